package agents

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/entity"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"
)

const trendConfidence = 0.8

// TrendAgent analyzes every paper read so far and names trends and gaps.
type TrendAgent struct {
	provider llm.LLMProvider
}

func NewTrendAgent(provider llm.LLMProvider) *TrendAgent {
	return &TrendAgent{provider: provider}
}

func (a *TrendAgent) StepType() entity.StepType { return entity.StepTrend }

func (a *TrendAgent) Run(ctx context.Context, in Input) (*Output, error) {
	readings := in.Completed[entity.StepReader]
	if len(readings) == 0 {
		return nil, fmt.Errorf("no completed readings to analyze")
	}

	var notes strings.Builder
	for i := len(readings) - 1; i >= 0; i-- { // oldest first reads better
		record := readings[i]
		md, err := pipeline.DecodeMetadata(entity.StepReader, record.Metadata)
		if err != nil {
			return nil, fmt.Errorf("read reader metadata: %w", err)
		}
		reader := md.(pipeline.ReaderMetadata)

		fmt.Fprintf(&notes, "- %s\n", record.Result)
		for _, kp := range reader.KeyPoints {
			fmt.Fprintf(&notes, "  * %s\n", kp)
		}
	}

	focus := in.Session.Memory.Focus
	if focus == "" {
		focus = in.Session.Question
	}

	prompt := fmt.Sprintf(constant.TrendPromptV1, focus, notes.String())
	raw, err := a.provider.Generate(ctx, prompt,
		llm.WithJSONOutput(),
		llm.WithTemperature(0.4),
	)
	if err != nil {
		return nil, fmt.Errorf("trend generation: %w", err)
	}

	var parsed struct {
		Summary string   `json:"summary"`
		Trends  []string `json:"trends"`
		Gaps    []string `json:"gaps"`
	}
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("trend output: %w", err)
	}

	return &Output{
		Summary:    parsed.Summary,
		Confidence: trendConfidence,
		Metadata: pipeline.TrendMetadata{
			Trends:         parsed.Trends,
			Gaps:           parsed.Gaps,
			PapersAnalyzed: len(readings),
		},
	}, nil
}
