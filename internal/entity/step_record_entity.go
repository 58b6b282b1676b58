// FILE: internal/entity/step_record_entity.go
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StepType string
type StepStatus string
type FeedbackDecision string

const (
	StepThesis     StepType = "thesis"
	StepFile       StepType = "file"
	StepSearch     StepType = "search"
	StepReader     StepType = "reader"
	StepTrend      StepType = "trend"
	StepHypothesis StepType = "hypothesis"
	StepMap        StepType = "map"

	// StepStatusPending is never persisted: the absence of a record for a
	// step IS pending. StepStatusRunning only exists in-process while the
	// in-flight guard is held.
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"

	FeedbackAccepted FeedbackDecision = "accepted"
	FeedbackRejected FeedbackDecision = "rejected"
	FeedbackEdited   FeedbackDecision = "edited"
)

// StepRecord is one persisted outcome of executing a pipeline step. Result
// fields are immutable after creation; only UserFeedback may be updated.
// Re-runs append new records, the latest completed one is authoritative.
type StepRecord struct {
	Id           int64
	SessionId    uuid.UUID
	StepType     StepType
	Result       string
	Confidence   int // always clamped to [0,100]
	Sources      []string
	Warnings     []string
	Metadata     json.RawMessage
	Status       StepStatus
	UserFeedback FeedbackDecision
	CreatedAt    time.Time
}
