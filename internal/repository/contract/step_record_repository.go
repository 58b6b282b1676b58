package contract

import (
	"context"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

// StepRecordRepository is append-only over result fields: there is no
// general Update, only the feedback column may change after insert.
type StepRecordRepository interface {
	Create(ctx context.Context, record *entity.StepRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StepRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateFeedback(ctx context.Context, id int64, decision entity.FeedbackDecision) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
