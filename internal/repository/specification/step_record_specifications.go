package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySession scopes a query to one session's rows (step records, files).
type BySession struct {
	SessionID uuid.UUID
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByStepType filters step records by step type.
type ByStepType struct {
	StepType string
}

func (s ByStepType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("step_type = ?", s.StepType)
}

// ByStatus filters step records by status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByRecordID filters by the integer step record id.
type ByRecordID struct {
	ID int64
}

func (s ByRecordID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}
