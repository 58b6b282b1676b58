package pipeline

import (
	"encoding/json"
	"fmt"

	"ai-research-be/internal/entity"
)

// Metadata is the step-specific structured payload of a StepRecord. Each
// step type owns exactly one payload shape; DecodeMetadata resolves the
// shape from the step type instead of sniffing fields.
type Metadata interface {
	Step() entity.StepType
}

type ThesisMetadata struct {
	Summary   string            `json:"summary"`
	Keywords  []string          `json:"keywords"`
	Variables map[string]string `json:"variables"`
}

func (ThesisMetadata) Step() entity.StepType { return entity.StepThesis }

// Paper is one literature descriptor returned by the search backend.
type Paper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Abstract  string   `json:"abstract"`
	Published string   `json:"published"`
	URL       string   `json:"url"`
}

type SearchMetadata struct {
	Query  string  `json:"query"`
	Papers []Paper `json:"papers"`
}

func (SearchMetadata) Step() entity.StepType { return entity.StepSearch }

type ReaderMetadata struct {
	PaperID    string   `json:"paper_id"`
	PaperTitle string   `json:"paper_title"`
	KeyPoints  []string `json:"key_points"`
}

func (ReaderMetadata) Step() entity.StepType { return entity.StepReader }

type TrendMetadata struct {
	Trends         []string `json:"trends"`
	Gaps           []string `json:"gaps"`
	PapersAnalyzed int      `json:"papers_analyzed"`
}

func (TrendMetadata) Step() entity.StepType { return entity.StepTrend }

type Hypothesis struct {
	Statement string `json:"statement"`
	Rationale string `json:"rationale"`
}

type HypothesisMetadata struct {
	Hypotheses []Hypothesis `json:"hypotheses"`
}

func (HypothesisMetadata) Step() entity.StepType { return entity.StepHypothesis }

type MapMetadata struct {
	// Diagram is a mermaid flowchart of the session's pipeline run.
	Diagram   string `json:"diagram"`
	StepCount int    `json:"step_count"`
}

func (MapMetadata) Step() entity.StepType { return entity.StepMap }

type FileMetadata struct {
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Keywords    []string `json:"keywords"`
	Topics      []string `json:"topics"`
}

func (FileMetadata) Step() entity.StepType { return entity.StepFile }

// EncodeMetadata serializes a payload for storage. A nil payload (failed
// runs have none) encodes to an empty object so stored records stay
// uniformly readable.
func EncodeMetadata(md Metadata) (json.RawMessage, error) {
	if md == nil {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode %s metadata: %w", md.Step(), err)
	}
	return raw, nil
}

// DecodeMetadata parses a stored payload back into its typed shape.
func DecodeMetadata(step entity.StepType, raw json.RawMessage) (Metadata, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	var (
		md  Metadata
		err error
	)
	switch step {
	case entity.StepThesis:
		var m ThesisMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepSearch:
		var m SearchMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepReader:
		var m ReaderMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepTrend:
		var m TrendMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepHypothesis:
		var m HypothesisMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepMap:
		var m MapMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	case entity.StepFile:
		var m FileMetadata
		err = json.Unmarshal(raw, &m)
		md = m
	default:
		return nil, fmt.Errorf("unknown step type: %q", step)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", step, err)
	}
	return md, nil
}
