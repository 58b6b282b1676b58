package implementation

import (
	"context"
	"errors"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/mapper"
	"ai-research-be/internal/model"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StepRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StepRecordMapper
}

func NewStepRecordRepository(db *gorm.DB) contract.StepRecordRepository {
	return &StepRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewStepRecordMapper(),
	}
}

func (r *StepRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StepRecordRepositoryImpl) Create(ctx context.Context, record *entity.StepRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	// The insert assigns the monotonic id and the timestamp.
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *StepRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepRecord, error) {
	var m model.StepRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StepRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StepRecord, error) {
	var models []*model.StepRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *StepRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.StepRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StepRecordRepositoryImpl) UpdateFeedback(ctx context.Context, id int64, decision entity.FeedbackDecision) error {
	result := r.db.WithContext(ctx).
		Model(&model.StepRecord{}).
		Where("id = ?", id).
		Update("user_feedback", string(decision))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *StepRecordRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.StepRecord{}).Error
}
