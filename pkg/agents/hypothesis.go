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

const hypothesisConfidence = 0.85

// HypothesisAgent turns the trend analysis into testable hypotheses.
type HypothesisAgent struct {
	provider llm.LLMProvider
}

func NewHypothesisAgent(provider llm.LLMProvider) *HypothesisAgent {
	return &HypothesisAgent{provider: provider}
}

func (a *HypothesisAgent) StepType() entity.StepType { return entity.StepHypothesis }

func (a *HypothesisAgent) Run(ctx context.Context, in Input) (*Output, error) {
	record := in.LatestCompleted(entity.StepTrend)
	if record == nil {
		return nil, fmt.Errorf("no completed trend analysis available")
	}

	md, err := pipeline.DecodeMetadata(entity.StepTrend, record.Metadata)
	if err != nil {
		return nil, fmt.Errorf("read trend metadata: %w", err)
	}
	trend := md.(pipeline.TrendMetadata)

	focus := in.Session.Memory.Focus
	if focus == "" {
		focus = in.Session.Question
	}

	prompt := fmt.Sprintf(constant.HypothesisPromptV1,
		focus,
		bulletList(trend.Trends),
		bulletList(trend.Gaps),
	)
	raw, err := a.provider.Generate(ctx, prompt,
		llm.WithJSONOutput(),
		llm.WithTemperature(0.7),
	)
	if err != nil {
		return nil, fmt.Errorf("hypothesis generation: %w", err)
	}

	var parsed struct {
		Summary    string `json:"summary"`
		Hypotheses []struct {
			Statement string `json:"statement"`
			Rationale string `json:"rationale"`
		} `json:"hypotheses"`
	}
	if err := decodeModelJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("hypothesis output: %w", err)
	}
	if len(parsed.Hypotheses) == 0 {
		return nil, fmt.Errorf("model proposed no hypotheses")
	}

	hypotheses := make([]pipeline.Hypothesis, 0, len(parsed.Hypotheses))
	for _, h := range parsed.Hypotheses {
		hypotheses = append(hypotheses, pipeline.Hypothesis{
			Statement: h.Statement,
			Rationale: h.Rationale,
		})
	}

	return &Output{
		Summary:    parsed.Summary,
		Confidence: hypothesisConfidence,
		Metadata: pipeline.HypothesisMetadata{
			Hypotheses: hypotheses,
		},
	}, nil
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}
