package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UploadedFileRepository interface {
	Create(ctx context.Context, file *entity.UploadedFile) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UploadedFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
