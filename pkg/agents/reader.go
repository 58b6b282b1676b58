package agents

import (
	"context"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/entity"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"
)

const readerConfidence = 0.85

// ReaderAgent digests the top-ranked paper from the latest completed
// search.
type ReaderAgent struct {
	provider llm.LLMProvider
}

func NewReaderAgent(provider llm.LLMProvider) *ReaderAgent {
	return &ReaderAgent{provider: provider}
}

func (a *ReaderAgent) StepType() entity.StepType { return entity.StepReader }

func (a *ReaderAgent) Run(ctx context.Context, in Input) (*Output, error) {
	record := in.LatestCompleted(entity.StepSearch)
	if record == nil {
		return nil, fmt.Errorf("no completed search results available")
	}

	md, err := pipeline.DecodeMetadata(entity.StepSearch, record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("read search metadata: %w", err)
	}
	search := md.(pipeline.SearchMetadata)
	if len(search.Papers) == 0 {
		return nil, fmt.Errorf("search returned no papers to read")
	}
	paper := search.Papers[0]

	prompt := fmt.Sprintf(constant.ReaderPromptV1, paper.Title, paper.Abstract)
	raw, err := a.provider.Generate(ctx, prompt,
		llm.WithJSONOutput(),
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("reader generation: %w", err)
	}

	var parsed struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
	}
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("reader output: %w", err)
	}

	return &Output{
		Summary:    fmt.Sprintf("%s: %s", paper.Title, parsed.Summary),
		Confidence: readerConfidence,
		Sources:    []string{paper.URL},
		Metadata: pipeline.ReaderMetadata{
			PaperID:    paper.ID,
			PaperTitle: paper.Title,
			KeyPoints:  parsed.KeyPoints,
		},
	}, nil
}
