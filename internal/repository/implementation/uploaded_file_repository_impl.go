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

type UploadedFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UploadedFileMapper
}

func NewUploadedFileRepository(db *gorm.DB) contract.UploadedFileRepository {
	return &UploadedFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewUploadedFileMapper(),
	}
}

func (r *UploadedFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UploadedFileRepositoryImpl) Create(ctx context.Context, file *entity.UploadedFile) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *UploadedFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UploadedFile, error) {
	var m model.UploadedFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UploadedFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error) {
	var models []*model.UploadedFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *UploadedFileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UploadedFile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UploadedFileRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.UploadedFile{}).Error
}
