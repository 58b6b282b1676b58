package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StepRecord rows are append-only: result fields are never updated after
// insert, only user_feedback is. No soft delete; history is the point.
type StepRecord struct {
	Id           int64           `gorm:"primaryKey;autoIncrement"`
	SessionId    uuid.UUID       `gorm:"type:uuid;not null;index:idx_step_records_session_step,priority:1"`
	Session      ResearchSession `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	StepType     string          `gorm:"type:varchar(20);not null;index:idx_step_records_session_step,priority:2"`
	Result       string          `gorm:"type:text"`
	Confidence   int             `gorm:"not null;default:0"`
	Sources      datatypes.JSON  `gorm:"type:jsonb"`
	Warnings     datatypes.JSON  `gorm:"type:jsonb"`
	Metadata     datatypes.JSON  `gorm:"type:jsonb"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	UserFeedback string          `gorm:"type:varchar(20)"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (StepRecord) TableName() string {
	return "step_records"
}
