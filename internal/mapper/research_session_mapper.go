package mapper

import (
	"encoding/json"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResearchSessionMapper struct{}

func NewResearchSessionMapper() *ResearchSessionMapper {
	return &ResearchSessionMapper{}
}

func (m *ResearchSessionMapper) ToEntity(s *model.ResearchSession) *entity.Session {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	// A corrupt or missing memory document degrades to an empty one rather
	// than failing the read; the pipeline rebuilds progress from records.
	var memory entity.SharedMemory
	if len(s.Memory) > 0 {
		_ = json.Unmarshal(s.Memory, &memory)
	}
	if memory.AgentProgress == nil {
		memory.AgentProgress = map[entity.StepType]entity.StepStatus{}
	}
	if memory.Variables == nil {
		memory.Variables = map[string]string{}
	}
	if memory.Keywords == nil {
		memory.Keywords = []string{}
	}

	return &entity.Session{
		Id:           s.Id,
		ResearcherId: s.ResearcherId,
		Title:        s.Title,
		Question:     s.Question,
		Memory:       memory,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    s.DeletedAt.Valid,
	}
}

func (m *ResearchSessionMapper) ToModel(s *entity.Session) *model.ResearchSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	memory, _ := json.Marshal(s.Memory)

	return &model.ResearchSession{
		Id:           s.Id,
		ResearcherId: s.ResearcherId,
		Title:        s.Title,
		Question:     s.Question,
		Memory:       datatypes.JSON(memory),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *ResearchSessionMapper) ToEntities(sessions []*model.ResearchSession) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
