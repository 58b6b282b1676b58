// FILE: internal/dto/auth_dto.go
package dto

import (
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	FullName      string `json:"full_name" validate:"required,min=3"`
	Affiliation   string `json:"affiliation"`
	ResearchFocus string `json:"research_focus"`
}

type RegisterResponse struct {
	Id uuid.UUID `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// OrcidLoginResponse carries the authorize URL the client should redirect
// to.
type OrcidLoginResponse struct {
	URL string `json:"url"`
}

type OrcidCallbackResponse struct {
	AccessToken string `json:"access_token"`
	OrcidID     string `json:"orcid_id"`
	IsNewUser   bool   `json:"is_new_user"`
}
