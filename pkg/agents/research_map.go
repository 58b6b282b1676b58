package agents

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/internal/entity"
	"ai-research-be/pkg/pipeline"
)

const mapConfidence = 0.9

// MapAgent renders the session's pipeline run as a Mermaid flowchart. It
// is fully deterministic; no model call is involved.
type MapAgent struct{}

func NewMapAgent() *MapAgent { return &MapAgent{} }

func (a *MapAgent) StepType() entity.StepType { return entity.StepMap }

func (a *MapAgent) Run(_ context.Context, in Input) (*Output, error) {
	progress := in.Session.Memory.AgentProgress

	var diagram strings.Builder
	diagram.WriteString("graph TD\n")
	for _, step := range pipeline.Steps {
		status := progress[step]
		fmt.Fprintf(&diagram, "    %s[\"%s %s\"]:::%s\n",
			step, strings.ToUpper(string(step)), statusMarker(status), statusClass(status))
	}
	for _, step := range pipeline.Steps {
		for _, dep := range pipeline.Prerequisites(step) {
			fmt.Fprintf(&diagram, "    %s --> %s\n", dep, step)
		}
	}
	diagram.WriteString("    classDef completed fill:#d4edda,stroke:#28a745\n")
	diagram.WriteString("    classDef failed fill:#f8d7da,stroke:#dc3545\n")
	diagram.WriteString("    classDef pending fill:#e2e3e5,stroke:#6c757d\n")

	completed := 0
	var lines []string
	for _, step := range pipeline.Steps {
		if progress[step] != entity.StepStatusCompleted {
			continue
		}
		completed++
		if record := in.LatestCompleted(step); record != nil {
			lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(step)), firstSentence(record.Result)))
		}
	}

	summary := fmt.Sprintf("Research map generated: %d of %d steps completed.", completed, len(pipeline.Steps))
	if len(lines) > 0 {
		summary += "\n" + strings.Join(lines, "\n")
	}

	return &Output{
		Summary:    summary,
		Confidence: mapConfidence,
		Metadata: pipeline.MapMetadata{
			Diagram:   diagram.String(),
			StepCount: completed,
		},
	}, nil
}

func statusMarker(s entity.StepStatus) string {
	switch s {
	case entity.StepStatusCompleted:
		return "✓"
	case entity.StepStatusFailed:
		return "✗"
	default:
		return "○"
	}
}

func statusClass(s entity.StepStatus) string {
	switch s {
	case entity.StepStatusCompleted:
		return "completed"
	case entity.StepStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// firstSentence trims a result down to a single summary line.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > 160 {
		return string(runes[:160]) + "..."
	}
	return s
}
