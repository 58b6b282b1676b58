// Package pipeline holds the pure orchestration rules of the research
// pipeline: the step catalog, the prerequisite table, the step metadata
// shapes and the shared-memory merge rules. Nothing in here does I/O.
package pipeline

import (
	"fmt"
	"time"

	"ai-research-be/internal/entity"
)

// Steps lists every pipeline step in canonical order.
var Steps = []entity.StepType{
	entity.StepThesis,
	entity.StepFile,
	entity.StepSearch,
	entity.StepReader,
	entity.StepTrend,
	entity.StepHypothesis,
	entity.StepMap,
}

// prerequisites is the static dependency table. FILE is a free branch: it
// may run at any point in the session lifetime, including concurrently
// with SEARCH.
var prerequisites = map[entity.StepType][]entity.StepType{
	entity.StepThesis:     {},
	entity.StepFile:       {},
	entity.StepSearch:     {entity.StepThesis},
	entity.StepReader:     {entity.StepSearch},
	entity.StepTrend:      {entity.StepReader},
	entity.StepHypothesis: {entity.StepTrend},
	entity.StepMap:        {entity.StepHypothesis},
}

func ParseStepType(s string) (entity.StepType, error) {
	step := entity.StepType(s)
	if _, ok := prerequisites[step]; !ok {
		return "", fmt.Errorf("unknown step type: %q", s)
	}
	return step, nil
}

// Prerequisites returns the immediate prerequisites of a step in table
// order. Callers must not mutate the returned slice.
func Prerequisites(step entity.StepType) []entity.StepType {
	return prerequisites[step]
}

// Eligible reports whether a step may run given a session's per-step
// statuses. A prerequisite is satisfied only by StepStatusCompleted;
// missing lists the unmet prerequisites in table order.
func Eligible(step entity.StepType, statuses map[entity.StepType]entity.StepStatus) (bool, []entity.StepType) {
	var missing []entity.StepType
	for _, pre := range prerequisites[step] {
		if statuses[pre] != entity.StepStatusCompleted {
			missing = append(missing, pre)
		}
	}
	return len(missing) == 0, missing
}

// NewSharedMemory returns the memory a fresh session starts with: every
// step pending, nothing accumulated yet.
func NewSharedMemory() entity.SharedMemory {
	progress := make(map[entity.StepType]entity.StepStatus, len(Steps))
	for _, s := range Steps {
		progress[s] = entity.StepStatusPending
	}
	return entity.SharedMemory{
		Keywords:      []string{},
		Variables:     map[string]string{},
		AgentProgress: progress,
		LastUpdate:    time.Now(),
	}
}

// ClampConfidence normalizes a backend confidence in [0,1] to the stored
// integer scale [0,100]. Out-of-range inputs are clamped, never rejected.
func ClampConfidence(c float64) int {
	scaled := int(c*100 + 0.5)
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}
