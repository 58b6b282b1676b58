package model

import (
	"time"

	"github.com/google/uuid"
)

type UploadedFile struct {
	Id               int64           `gorm:"primaryKey;autoIncrement"`
	SessionId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Session          ResearchSession `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	StoredFilename   string          `gorm:"type:varchar(512);not null"`
	OriginalFilename string          `gorm:"type:varchar(512);not null"`
	ContentType      string          `gorm:"type:varchar(100)"`
	Size             int64           `gorm:"not null;default:0"`
	ExtractedText    string          `gorm:"type:text"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}
