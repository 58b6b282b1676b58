// FILE: internal/dto/upload_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadedFileResponse struct {
	Id               int64     `json:"id"`
	SessionId        uuid.UUID `json:"session_id"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	HasText          bool      `json:"has_text"`
	CreatedAt        time.Time `json:"created_at"`
}

// UploadResponse pairs the stored file with the analysis record the FILE
// agent produced for it.
type UploadResponse struct {
	File   UploadedFileResponse `json:"file"`
	Record StepRecordResponse   `json:"record"`
}
