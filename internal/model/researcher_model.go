package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Researcher struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash  *string        `gorm:"type:varchar(255)"` // null for ORCID-only accounts
	FullName      string         `gorm:"type:varchar(255);not null"`
	Affiliation   string         `gorm:"type:varchar(255)"`
	ResearchFocus string         `gorm:"type:text"`
	OrcidID       *string        `gorm:"type:varchar(19);uniqueIndex"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Researcher) TableName() string {
	return "researchers"
}
