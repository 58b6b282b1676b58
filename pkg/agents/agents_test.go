package agents

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-research-be/internal/entity"
	"ai-research-be/pkg/arxiv"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
)

// scriptedProvider returns canned responses in order, or a fixed error.
type scriptedProvider struct {
	responses []string
	err       error
	prompts   []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return p.next(prompt)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.next(prompt)
}

func (p *scriptedProvider) next(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("scripted provider exhausted")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func testSession(question string) *entity.Session {
	return &entity.Session{
		Id:       uuid.New(),
		Title:    "Test Session",
		Question: question,
		Memory:   pipeline.NewSharedMemory(),
	}
}

func completedRecord(t *testing.T, step entity.StepType, result string, md pipeline.Metadata) *entity.StepRecord {
	t.Helper()
	raw, err := pipeline.EncodeMetadata(md)
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	return &entity.StepRecord{
		StepType: step,
		Result:   result,
		Status:   entity.StepStatusCompleted,
		Metadata: raw,
	}
}

func TestThesisAgentParsesModelOutput(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"summary": "iPSC models enable patient-specific study of neurodegeneration.",
		  "keywords": ["ipsc", "neurodegeneration"],
		  "variables": {"independent": "cell source", "dependent": "disease phenotype"}}`,
	}}
	agent := NewThesisAgent(provider)

	out, err := agent.Run(context.Background(), Input{Session: testSession("How do iPSCs advance neurodegeneration research?")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", out.Confidence)
	}
	md, ok := out.Metadata.(pipeline.ThesisMetadata)
	if !ok {
		t.Fatalf("metadata type = %T", out.Metadata)
	}
	if len(md.Keywords) != 2 || md.Keywords[0] != "ipsc" {
		t.Errorf("keywords = %v", md.Keywords)
	}
	if md.Variables["independent"] != "cell source" {
		t.Errorf("variables = %v", md.Variables)
	}
	if !strings.Contains(provider.prompts[0], "How do iPSCs advance neurodegeneration research?") {
		t.Error("prompt should embed the research question")
	}
}

func TestThesisAgentFallsBackOnProse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"The thesis is that iPSC models are transformative.",
	}}
	agent := NewThesisAgent(provider)

	out, err := agent.Run(context.Background(), Input{Session: testSession("q")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Summary != "The thesis is that iPSC models are transformative." {
		t.Errorf("summary = %q", out.Summary)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a warning about unparseable output")
	}
	if out.Confidence >= 0.92 {
		t.Errorf("fallback confidence should drop, got %v", out.Confidence)
	}
}

func TestThesisAgentPropagatesProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model offline")}
	agent := NewThesisAgent(provider)

	_, err := agent.Run(context.Background(), Input{Session: testSession("q")})
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

const searchAgentFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Paper One</title>
    <summary>First abstract.</summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>Jane Roe</name></author>
    <link href="http://arxiv.org/abs/2301.00001v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func TestSearchAgentUsesMemoryKeywords(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(searchAgentFeed))
	}))
	defer srv.Close()

	session := testSession("q")
	session.Memory.Keywords = []string{"ipsc", "neurodegeneration"}

	agent := NewSearchAgent(arxiv.NewClient(srv.URL), 5)
	out, err := agent.Run(context.Background(), Input{Session: session})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gotQuery != `all:"ipsc" AND all:"neurodegeneration"` {
		t.Errorf("query = %q", gotQuery)
	}
	if out.Confidence != 0.9 {
		t.Errorf("confidence = %v", out.Confidence)
	}
	md := out.Metadata.(pipeline.SearchMetadata)
	if len(md.Papers) != 1 || md.Papers[0].Title != "Paper One" {
		t.Errorf("papers = %+v", md.Papers)
	}
	if len(out.Sources) != 1 {
		t.Errorf("sources = %v", out.Sources)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestSearchAgentEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer srv.Close()

	session := testSession("q")
	session.Memory.Keywords = []string{"nonexistent topic"}

	agent := NewSearchAgent(arxiv.NewClient(srv.URL), 5)
	out, err := agent.Run(context.Background(), Input{Session: session})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", out.Confidence)
	}
	found := false
	for _, w := range out.Warnings {
		if w == "No papers found" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want No papers found", out.Warnings)
	}
}

func TestSearchAgentFallsBackToQuestion(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(searchAgentFeed))
	}))
	defer srv.Close()

	session := testSession("stem cell therapies")

	agent := NewSearchAgent(arxiv.NewClient(srv.URL), 5)
	out, err := agent.Run(context.Background(), Input{Session: session})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gotQuery != `all:"stem cell therapies"` {
		t.Errorf("query = %q", gotQuery)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a warning about missing keywords")
	}
}

func TestReaderAgentReadsTopPaper(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"summary": "Surveys iPSC disease models.", "key_points": ["patient-derived lines", "phenotype rescue"]}`,
	}}
	agent := NewReaderAgent(provider)

	search := completedRecord(t, entity.StepSearch, "Found 1 papers.", pipeline.SearchMetadata{
		Query: `all:"ipsc"`,
		Papers: []pipeline.Paper{{
			ID:       "2301.00001v1",
			Title:    "Paper One",
			Abstract: "First abstract.",
			URL:      "http://arxiv.org/abs/2301.00001v1",
		}},
	})

	in := Input{
		Session:   testSession("q"),
		Completed: map[entity.StepType][]*entity.StepRecord{entity.StepSearch: {search}},
	}
	out, err := agent.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Confidence != 0.85 {
		t.Errorf("confidence = %v", out.Confidence)
	}
	md := out.Metadata.(pipeline.ReaderMetadata)
	if md.PaperTitle != "Paper One" || md.PaperID != "2301.00001v1" {
		t.Errorf("metadata = %+v", md)
	}
	if len(md.KeyPoints) != 2 {
		t.Errorf("key points = %v", md.KeyPoints)
	}
	if len(out.Sources) != 1 || out.Sources[0] != "http://arxiv.org/abs/2301.00001v1" {
		t.Errorf("sources = %v", out.Sources)
	}
	if !strings.Contains(provider.prompts[0], "First abstract.") {
		t.Error("prompt should embed the abstract")
	}
}

func TestReaderAgentNoPapers(t *testing.T) {
	agent := NewReaderAgent(&scriptedProvider{})

	search := completedRecord(t, entity.StepSearch, "No papers found.", pipeline.SearchMetadata{Query: `all:"x"`})
	in := Input{
		Session:   testSession("q"),
		Completed: map[entity.StepType][]*entity.StepRecord{entity.StepSearch: {search}},
	}
	if _, err := agent.Run(context.Background(), in); err == nil {
		t.Fatal("expected error when the search has no papers")
	}
}

func TestTrendAgentCollectsAllReadings(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"summary": "The field converges on patient-derived models.",
		  "trends": ["patient-derived models"], "gaps": ["long-term stability"]}`,
	}}
	agent := NewTrendAgent(provider)

	older := completedRecord(t, entity.StepReader, "Paper Two: earlier work.", pipeline.ReaderMetadata{
		PaperTitle: "Paper Two", KeyPoints: []string{"baseline protocols"},
	})
	newer := completedRecord(t, entity.StepReader, "Paper One: recent survey.", pipeline.ReaderMetadata{
		PaperTitle: "Paper One", KeyPoints: []string{"phenotype rescue"},
	})

	in := Input{
		Session:   testSession("q"),
		Completed: map[entity.StepType][]*entity.StepRecord{entity.StepReader: {newer, older}},
	}
	out, err := agent.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	md := out.Metadata.(pipeline.TrendMetadata)
	if md.PapersAnalyzed != 2 {
		t.Errorf("papers analyzed = %d, want 2", md.PapersAnalyzed)
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "baseline protocols") || !strings.Contains(prompt, "phenotype rescue") {
		t.Error("prompt should carry key points from every reading")
	}
	// Oldest reading should appear before the newest.
	if strings.Index(prompt, "Paper Two") > strings.Index(prompt, "Paper One") {
		t.Error("readings should be ordered oldest first")
	}
}

func TestHypothesisAgentUsesTrendMetadata(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"summary": "Two directions proposed.",
		  "hypotheses": [{"statement": "H1", "rationale": "R1"}, {"statement": "H2", "rationale": "R2"}]}`,
	}}
	agent := NewHypothesisAgent(provider)

	trend := completedRecord(t, entity.StepTrend, "Trends found.", pipeline.TrendMetadata{
		Trends: []string{"patient-derived models"},
		Gaps:   []string{"long-term stability"},
	})
	in := Input{
		Session:   testSession("q"),
		Completed: map[entity.StepType][]*entity.StepRecord{entity.StepTrend: {trend}},
	}
	out, err := agent.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	md := out.Metadata.(pipeline.HypothesisMetadata)
	if len(md.Hypotheses) != 2 || md.Hypotheses[0].Statement != "H1" {
		t.Errorf("hypotheses = %+v", md.Hypotheses)
	}
	if !strings.Contains(provider.prompts[0], "long-term stability") {
		t.Error("prompt should embed the gaps")
	}
}

func TestMapAgentRendersDiagram(t *testing.T) {
	session := testSession("q")
	session.Memory.AgentProgress[entity.StepThesis] = entity.StepStatusCompleted
	session.Memory.AgentProgress[entity.StepSearch] = entity.StepStatusCompleted
	session.Memory.AgentProgress[entity.StepReader] = entity.StepStatusFailed

	thesis := completedRecord(t, entity.StepThesis, "Thesis formulated.", pipeline.ThesisMetadata{Summary: "Thesis formulated."})
	in := Input{
		Session:   session,
		Completed: map[entity.StepType][]*entity.StepRecord{entity.StepThesis: {thesis}},
	}

	out, err := NewMapAgent().Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	md := out.Metadata.(pipeline.MapMetadata)
	if !strings.HasPrefix(md.Diagram, "graph TD") {
		t.Errorf("diagram should be a mermaid flowchart, got %q", md.Diagram)
	}
	if !strings.Contains(md.Diagram, `thesis["THESIS ✓"]:::completed`) {
		t.Errorf("thesis node missing or wrong: %s", md.Diagram)
	}
	if !strings.Contains(md.Diagram, `reader["READER ✗"]:::failed`) {
		t.Errorf("reader node missing or wrong: %s", md.Diagram)
	}
	if !strings.Contains(md.Diagram, "thesis --> search") {
		t.Errorf("prerequisite edge missing: %s", md.Diagram)
	}
	if md.StepCount != 2 {
		t.Errorf("step count = %d, want 2", md.StepCount)
	}
	if out.Confidence != 0.9 {
		t.Errorf("confidence = %v", out.Confidence)
	}
}

func TestFileAgentExtractsKeywords(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"summary": "Protocol notes for iPSC culture.", "keywords": ["ipsc", "culture"], "topics": ["lab protocols"]}`,
	}}
	agent := NewFileAgent(provider)

	in := Input{
		Session:         testSession("q"),
		FileText:        "Day 1: thaw iPSC line. Day 2: passage cells.",
		FileName:        "protocol.txt",
		FileContentType: "text/plain",
	}
	out, err := agent.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Confidence != 0.95 {
		t.Errorf("confidence = %v", out.Confidence)
	}
	md := out.Metadata.(pipeline.FileMetadata)
	if md.Filename != "protocol.txt" || len(md.Keywords) != 2 {
		t.Errorf("metadata = %+v", md)
	}
}

func TestFileAgentNoText(t *testing.T) {
	agent := NewFileAgent(&scriptedProvider{})

	in := Input{
		Session:         testSession("q"),
		FileName:        "paper.pdf",
		FileContentType: "application/pdf",
	}
	out, err := agent.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", out.Confidence)
	}
	if len(out.Warnings) == 0 {
		t.Error("expected a no-text warning")
	}
}

func TestRegistryResolvesEveryStep(t *testing.T) {
	registry := NewDefaultRegistry(&scriptedProvider{}, arxiv.NewClient(""), 5)

	for _, step := range pipeline.Steps {
		agent, err := registry.Get(step)
		if err != nil {
			t.Errorf("Get(%s): %v", step, err)
			continue
		}
		if agent.StepType() != step {
			t.Errorf("agent for %s reports %s", step, agent.StepType())
		}
	}

	if _, err := registry.Get(entity.StepType("bogus")); err == nil {
		t.Error("expected error for unregistered step")
	}
}
