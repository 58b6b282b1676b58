package pipeline

import (
	"time"

	"ai-research-be/internal/entity"
)

// Merge folds a finished step's outcome into the session memory and returns
// the new value. The input is never mutated and no I/O happens here; the
// caller persists the result together with the step record in one
// transaction, so memory and record log are never observably inconsistent.
//
// Field rules:
//   - THESIS copies keywords, focus summary and variables into memory.
//   - SEARCH sets the paper count.
//   - Every step stamps its progress entry and the last-update time.
//
// md may be nil for failed runs.
func Merge(mem entity.SharedMemory, step entity.StepType, status entity.StepStatus, md Metadata) entity.SharedMemory {
	out := cloneMemory(mem)

	if status == entity.StepStatusCompleted {
		switch m := md.(type) {
		case ThesisMetadata:
			if len(m.Keywords) > 0 {
				out.Keywords = append([]string(nil), m.Keywords...)
			}
			if m.Summary != "" {
				out.Focus = m.Summary
			}
			for k, v := range m.Variables {
				out.Variables[k] = v
			}
		case SearchMetadata:
			out.PaperCount = len(m.Papers)
		}
	}

	// Progress never reverts: once a step shows completed, a later failed
	// re-run must not hide that it once succeeded. The failure is still
	// fully visible in the record log.
	if out.AgentProgress[step] != entity.StepStatusCompleted {
		out.AgentProgress[step] = status
	}
	out.LastUpdate = time.Now()

	return out
}

func cloneMemory(mem entity.SharedMemory) entity.SharedMemory {
	out := mem
	out.Keywords = append([]string(nil), mem.Keywords...)
	out.Variables = make(map[string]string, len(mem.Variables))
	for k, v := range mem.Variables {
		out.Variables[k] = v
	}
	out.AgentProgress = make(map[entity.StepType]entity.StepStatus, len(mem.AgentProgress))
	for k, v := range mem.AgentProgress {
		out.AgentProgress[k] = v
	}
	return out
}
