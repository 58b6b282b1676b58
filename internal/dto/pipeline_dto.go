// FILE: internal/dto/pipeline_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StepRecordResponse struct {
	Id           int64           `json:"id"`
	SessionId    uuid.UUID       `json:"session_id"`
	StepType     string          `json:"step_type"`
	Result       string          `json:"result"`
	Confidence   int             `json:"confidence"` // 0-100
	Sources      []string        `json:"sources"`
	Warnings     []string        `json:"warnings"`
	Metadata     json.RawMessage `json:"metadata"`
	Status       string          `json:"status"`
	UserFeedback string          `json:"user_feedback,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// StepStatusResponse is one row of the session's status board.
type StepStatusResponse struct {
	StepType            string   `json:"step_type"`
	Status              string   `json:"status"`
	Eligible            bool     `json:"eligible"`
	MissingDependencies []string `json:"missing_dependencies,omitempty"`
}

type FeedbackRequest struct {
	RecordId int64
	Decision string `json:"decision" validate:"required,oneof=accepted rejected edited"`
}
