package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchSession struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ResearcherId uuid.UUID      `gorm:"type:uuid;not null;index"` // owner, for data isolation
	Title        string         `gorm:"type:varchar(255);not null"`
	Question     string         `gorm:"type:text;not null"`
	Memory       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime;index"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (ResearchSession) TableName() string {
	return "research_sessions"
}
