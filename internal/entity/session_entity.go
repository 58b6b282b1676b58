// FILE: internal/entity/session_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// SharedMemory is the accumulated cross-step context of one research session.
// It is persisted as a single jsonb document and only ever replaced as a
// whole, never patched field by field.
type SharedMemory struct {
	Focus         string                  `json:"focus,omitempty"`
	Keywords      []string                `json:"keywords"`
	Variables     map[string]string       `json:"variables"`
	PaperCount    int                     `json:"paper_count"`
	AgentProgress map[StepType]StepStatus `json:"agent_progress"`
	LastUpdate    time.Time               `json:"last_update"`
}

type Session struct {
	Id           uuid.UUID
	ResearcherId uuid.UUID
	Title        string
	Question     string
	Memory       SharedMemory
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
