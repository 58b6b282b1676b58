// FILE: internal/dto/session_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Question string `json:"question" validate:"required,min=10"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

// SharedMemoryResponse is the wire view of a session's shared memory.
type SharedMemoryResponse struct {
	Focus         string            `json:"focus,omitempty"`
	Keywords      []string          `json:"keywords"`
	Variables     map[string]string `json:"variables"`
	PaperCount    int               `json:"paper_count"`
	AgentProgress map[string]string `json:"agent_progress"`
	LastUpdate    time.Time         `json:"last_update"`
}

type SessionResponse struct {
	Id        uuid.UUID            `json:"id"`
	Title     string               `json:"title"`
	Question  string               `json:"question"`
	Memory    SharedMemoryResponse `json:"memory"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt *time.Time           `json:"updated_at"`
}

type SessionListItemResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Question  string     `json:"question"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateSessionRequest struct {
	Id       uuid.UUID
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Question string `json:"question" validate:"required,min=10"`
}

type UpdateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SessionStatisticsResponse struct {
	SessionId         uuid.UUID `json:"session_id"`
	TotalRecords      int       `json:"total_records"`
	CompletedRecords  int       `json:"completed_records"`
	FailedRecords     int       `json:"failed_records"`
	CompletionRate    float64   `json:"completion_rate"` // completed step types over the whole pipeline
	AverageConfidence float64   `json:"average_confidence"`
	TotalSources      int       `json:"total_sources"`
	TotalWarnings     int       `json:"total_warnings"`
	PaperCount        int       `json:"paper_count"`
}

// SessionExportDocument is a self-contained archive of one session. The
// same shape feeds Import.
type SessionExportDocument struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Session    ExportedSession  `json:"session"`
	Records    []ExportedRecord `json:"records"`
	Files      []ExportedFile   `json:"files"`
}

type ExportedSession struct {
	Title     string               `json:"title" validate:"required"`
	Question  string               `json:"question" validate:"required"`
	Memory    SharedMemoryResponse `json:"memory"`
	CreatedAt time.Time            `json:"created_at"`
}

type ExportedRecord struct {
	StepType     string          `json:"step_type"`
	Result       string          `json:"result"`
	Confidence   int             `json:"confidence"`
	Sources      []string        `json:"sources"`
	Warnings     []string        `json:"warnings"`
	Metadata     json.RawMessage `json:"metadata"`
	Status       string          `json:"status"`
	UserFeedback string          `json:"user_feedback,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ExportedFile struct {
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	ExtractedText    string    `json:"extracted_text,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type ImportSessionResponse struct {
	Id uuid.UUID `json:"id"`
}
