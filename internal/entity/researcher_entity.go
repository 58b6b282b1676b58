// FILE: internal/entity/researcher_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type Researcher struct {
	Id            uuid.UUID
	Email         string
	PasswordHash  *string // nil for ORCID-only accounts
	FullName      string
	Affiliation   string
	ResearchFocus string
	OrcidID       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
