// FILE: internal/service/feedback_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IFeedbackService interface {
	// SetFeedback records the researcher's verdict on a step record. Only
	// the feedback column changes; the record's result, status and memory
	// effects stay as they were.
	SetFeedback(ctx context.Context, researcherId uuid.UUID, recordId int64, decision string) (*dto.StepRecordResponse, error)
}

type feedbackService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewFeedbackService(uowFactory unitofwork.RepositoryFactory) IFeedbackService {
	return &feedbackService{
		uowFactory: uowFactory,
	}
}

func parseFeedbackDecision(s string) (entity.FeedbackDecision, error) {
	switch entity.FeedbackDecision(s) {
	case entity.FeedbackAccepted, entity.FeedbackRejected, entity.FeedbackEdited:
		return entity.FeedbackDecision(s), nil
	default:
		return "", fmt.Errorf("invalid feedback decision: %q", s)
	}
}

func (s *feedbackService) SetFeedback(ctx context.Context, researcherId uuid.UUID, recordId int64, decision string) (*dto.StepRecordResponse, error) {
	parsed, err := parseFeedbackDecision(decision)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.StepRecordRepository().FindOne(ctx,
		specification.ByRecordID{ID: recordId},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	// Ownership runs through the record's session.
	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: record.SessionId},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrRecordNotFound
	}

	if err := uow.StepRecordRepository().UpdateFeedback(ctx, recordId, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	record.UserFeedback = parsed
	return toStepRecordResponse(record), nil
}
