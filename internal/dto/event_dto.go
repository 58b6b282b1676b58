// FILE: internal/dto/event_dto.go
package dto

import "github.com/google/uuid"

// PipelineEventMessage is the watermill payload the pipeline, session and
// upload services publish; the consumer relays it to the event bus.
type PipelineEventMessage struct {
	EventType    string    `json:"event_type"`
	SessionId    uuid.UUID `json:"session_id"`
	ResearcherId uuid.UUID `json:"researcher_id"`
	StepType     string    `json:"step_type,omitempty"`
	RecordId     int64     `json:"record_id,omitempty"`
	Status       string    `json:"status,omitempty"`
}
