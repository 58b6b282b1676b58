package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
)

type ResearcherRepository interface {
	Create(ctx context.Context, researcher *entity.Researcher) error
	Update(ctx context.Context, researcher *entity.Researcher) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Researcher, error)
}
