// FILE: internal/entity/uploaded_file_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UploadedFile struct {
	Id               int64
	SessionId        uuid.UUID
	StoredFilename   string
	OriginalFilename string
	ContentType      string
	Size             int64
	ExtractedText    string
	CreatedAt        time.Time
}
