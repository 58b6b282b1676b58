package mapper

import (
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/model"

	"gorm.io/gorm"
)

type ResearcherMapper struct{}

func NewResearcherMapper() *ResearcherMapper {
	return &ResearcherMapper{}
}

func (m *ResearcherMapper) ToEntity(r *model.Researcher) *entity.Researcher {
	if r == nil {
		return nil
	}

	var deletedAt *time.Time
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Researcher{
		Id:            r.Id,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		FullName:      r.FullName,
		Affiliation:   r.Affiliation,
		ResearchFocus: r.ResearchFocus,
		OrcidID:       r.OrcidID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     r.DeletedAt.Valid,
	}
}

func (m *ResearcherMapper) ToModel(r *entity.Researcher) *model.Researcher {
	if r == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if r.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *r.DeletedAt, Valid: true}
	} else if r.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Researcher{
		Id:            r.Id,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		FullName:      r.FullName,
		Affiliation:   r.Affiliation,
		ResearchFocus: r.ResearchFocus,
		OrcidID:       r.OrcidID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DeletedAt:     deletedAt,
	}
}
