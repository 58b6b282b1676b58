package agents

import (
	"context"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/entity"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"
)

const (
	thesisConfidence         = 0.92
	thesisFallbackConfidence = 0.7
)

// ThesisAgent frames the research question into a thesis statement with
// search keywords and variables.
type ThesisAgent struct {
	provider llm.LLMProvider
}

func NewThesisAgent(provider llm.LLMProvider) *ThesisAgent {
	return &ThesisAgent{provider: provider}
}

func (a *ThesisAgent) StepType() entity.StepType { return entity.StepThesis }

func (a *ThesisAgent) Run(ctx context.Context, in Input) (*Output, error) {
	prompt := fmt.Sprintf(constant.ThesisPromptV1, in.Session.Question)

	raw, err := a.provider.Generate(ctx, prompt,
		llm.WithJSONOutput(),
		llm.WithTemperature(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("thesis generation: %w", err)
	}

	var parsed struct {
		Summary   string            `json:"summary"`
		Keywords  []string          `json:"keywords"`
		Variables map[string]string `json:"variables"`
	}
	if err := decodeModelJSON(raw, &parsed); err != nil {
		// The raw text is still a usable thesis statement; keep it and
		// flag that the structured fields are missing.
		return &Output{
			Summary:    raw,
			Confidence: thesisFallbackConfidence,
			Warnings:   []string{"model output was not valid JSON; keywords and variables unavailable"},
			Metadata:   pipeline.ThesisMetadata{Summary: raw},
		}, nil
	}

	return &Output{
		Summary:    parsed.Summary,
		Confidence: thesisConfidence,
		Metadata: pipeline.ThesisMetadata{
			Summary:   parsed.Summary,
			Keywords:  parsed.Keywords,
			Variables: parsed.Variables,
		},
	}, nil
}
