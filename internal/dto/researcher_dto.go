// FILE: internal/dto/researcher_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type ResearcherProfileResponse struct {
	Id            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Affiliation   string    `json:"affiliation,omitempty"`
	ResearchFocus string    `json:"research_focus,omitempty"`
	OrcidID       *string   `json:"orcid_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName      string  `json:"full_name" validate:"required,min=3"`
	Affiliation   string  `json:"affiliation"`
	ResearchFocus string  `json:"research_focus"`
	OrcidID       *string `json:"orcid_id" validate:"omitempty,len=19"`
}
