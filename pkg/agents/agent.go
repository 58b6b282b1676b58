// Package agents implements the generation backend of the research
// pipeline. Each agent produces the result payload for one step type;
// persistence, eligibility, and failure normalization belong to the
// pipeline service, not here.
package agents

import (
	"context"
	"fmt"

	"ai-research-be/internal/entity"
	"ai-research-be/pkg/arxiv"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/pipeline"
)

// Output is what an agent produces for one run. Confidence is on the
// model's native [0,1] scale; the caller normalizes it for storage.
type Output struct {
	Summary    string
	Confidence float64
	Sources    []string
	Warnings   []string
	Metadata   pipeline.Metadata
}

// Input carries the session state an agent may read. Completed holds the
// session's completed records per step, newest first.
type Input struct {
	Session   *entity.Session
	Completed map[entity.StepType][]*entity.StepRecord

	// File payload, set for FILE runs only.
	FileText        string
	FileName        string
	FileContentType string
}

// LatestCompleted returns the newest completed record for a step, or nil.
func (in Input) LatestCompleted(step entity.StepType) *entity.StepRecord {
	records := in.Completed[step]
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// Agent generates the result for one step type.
type Agent interface {
	StepType() entity.StepType
	Run(ctx context.Context, in Input) (*Output, error)
}

// Registry resolves the agent for a step type.
type Registry struct {
	agents map[entity.StepType]Agent
}

func NewRegistry(agents ...Agent) *Registry {
	r := &Registry{agents: make(map[entity.StepType]Agent, len(agents))}
	for _, a := range agents {
		r.agents[a.StepType()] = a
	}
	return r
}

func (r *Registry) Get(step entity.StepType) (Agent, error) {
	a, ok := r.agents[step]
	if !ok {
		return nil, fmt.Errorf("no agent registered for step %q", step)
	}
	return a, nil
}

// NewDefaultRegistry wires the production agent set.
func NewDefaultRegistry(provider llm.LLMProvider, search *arxiv.Client, maxSearchResults int) *Registry {
	return NewRegistry(
		NewThesisAgent(provider),
		NewSearchAgent(search, maxSearchResults),
		NewReaderAgent(provider),
		NewTrendAgent(provider),
		NewHypothesisAgent(provider),
		NewMapAgent(),
		NewFileAgent(provider),
	)
}
