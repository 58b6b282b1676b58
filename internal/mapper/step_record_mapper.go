package mapper

import (
	"encoding/json"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/datatypes"
)

type StepRecordMapper struct{}

func NewStepRecordMapper() *StepRecordMapper {
	return &StepRecordMapper{}
}

func (m *StepRecordMapper) ToEntity(r *model.StepRecord) *entity.StepRecord {
	if r == nil {
		return nil
	}

	var sources []string
	if len(r.Sources) > 0 {
		_ = json.Unmarshal(r.Sources, &sources)
	}
	var warnings []string
	if len(r.Warnings) > 0 {
		_ = json.Unmarshal(r.Warnings, &warnings)
	}

	return &entity.StepRecord{
		Id:           r.Id,
		SessionId:    r.SessionId,
		StepType:     entity.StepType(r.StepType),
		Result:       r.Result,
		Confidence:   r.Confidence,
		Sources:      sources,
		Warnings:     warnings,
		Metadata:     json.RawMessage(r.Metadata),
		Status:       entity.StepStatus(r.Status),
		UserFeedback: entity.FeedbackDecision(r.UserFeedback),
		CreatedAt:    r.CreatedAt,
	}
}

func (m *StepRecordMapper) ToModel(r *entity.StepRecord) *model.StepRecord {
	if r == nil {
		return nil
	}

	sources, _ := json.Marshal(emptyIfNil(r.Sources))
	warnings, _ := json.Marshal(emptyIfNil(r.Warnings))

	metadata := r.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	return &model.StepRecord{
		Id:           r.Id,
		SessionId:    r.SessionId,
		StepType:     string(r.StepType),
		Result:       r.Result,
		Confidence:   r.Confidence,
		Sources:      datatypes.JSON(sources),
		Warnings:     datatypes.JSON(warnings),
		Metadata:     datatypes.JSON(metadata),
		Status:       string(r.Status),
		UserFeedback: string(r.UserFeedback),
		CreatedAt:    r.CreatedAt,
	}
}

func (m *StepRecordMapper) ToEntities(records []*model.StepRecord) []*entity.StepRecord {
	entities := make([]*entity.StepRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
