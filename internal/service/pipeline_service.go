// FILE: internal/service/pipeline_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/inflight"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/agents"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
)

type IPipelineService interface {
	// ExecuteStep runs one pipeline step for a session and persists exactly
	// one terminal record. Agent failures come back as a failed record, not
	// as an error.
	ExecuteStep(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID, step entity.StepType) (*dto.StepRecordResponse, error)
	StepStatuses(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.StepStatusResponse, error)
	ListRecords(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.StepRecordResponse, error)
}

type pipelineService struct {
	uowFactory       unitofwork.RepositoryFactory
	registry         *agents.Registry
	guard            inflight.ExecutionGuard
	publisherService IPublisherService
	logger           logger.ILogger
	stepTimeout      time.Duration
}

func NewPipelineService(
	uowFactory unitofwork.RepositoryFactory,
	registry *agents.Registry,
	guard inflight.ExecutionGuard,
	publisherService IPublisherService,
	log logger.ILogger,
	stepTimeout time.Duration,
) IPipelineService {
	if stepTimeout <= 0 {
		stepTimeout = 120 * time.Second
	}
	return &pipelineService{
		uowFactory:       uowFactory,
		registry:         registry,
		guard:            guard,
		publisherService: publisherService,
		logger:           log,
		stepTimeout:      stepTimeout,
	}
}

// sessionState is the per-session view ExecuteStep and StepStatuses build
// from the record store: every record newest first, completed records
// bucketed per step, and the effective status per step.
type sessionState struct {
	records   []*entity.StepRecord
	completed map[entity.StepType][]*entity.StepRecord
	statuses  map[entity.StepType]entity.StepStatus
}

func (s *pipelineService) loadState(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*sessionState, error) {
	records, err := uow.StepRecordRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionId},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	state := &sessionState{
		records:   records,
		completed: make(map[entity.StepType][]*entity.StepRecord),
		statuses:  make(map[entity.StepType]entity.StepStatus),
	}

	latest := make(map[entity.StepType]*entity.StepRecord)
	for _, r := range records {
		if _, ok := latest[r.StepType]; !ok {
			latest[r.StepType] = r
		}
		if r.Status == entity.StepStatusCompleted {
			state.completed[r.StepType] = append(state.completed[r.StepType], r)
		}
	}

	// A step counts as completed once any completed record exists; a later
	// failed re-run never takes that away.
	for _, step := range pipeline.Steps {
		switch {
		case len(state.completed[step]) > 0:
			state.statuses[step] = entity.StepStatusCompleted
		case latest[step] != nil:
			state.statuses[step] = latest[step].Status
		default:
			state.statuses[step] = entity.StepStatusPending
		}
	}

	return state, nil
}

func (s *pipelineService) ExecuteStep(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID, step entity.StepType) (*dto.StepRecordResponse, error) {
	if step == entity.StepFile {
		return nil, ErrUnsupportedStep
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	state, err := s.loadState(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	if ok, missing := pipeline.Eligible(step, state.statuses); !ok {
		return nil, &DependencyUnmetError{Step: step, Missing: missing}
	}

	acquired, err := s.guard.Acquire(ctx, sessionId, step)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrStepInFlight
	}
	defer func() {
		if err := s.guard.Release(context.Background(), sessionId, step); err != nil {
			s.logger.Warn("PipelineService", "Failed to release in-flight slot", map[string]interface{}{
				"session_id": sessionId, "step": step, "error": err.Error(),
			})
		}
	}()

	agent, err := s.registry.Get(step)
	if err != nil {
		return nil, err
	}

	s.logger.Info("PipelineService", "Executing step", map[string]interface{}{
		"session_id": sessionId, "step": step,
	})

	runCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	output, runErr := agent.Run(runCtx, agents.Input{
		Session:   session,
		Completed: state.completed,
	})
	record := s.buildRecord(sessionId, step, output, runErr)

	if err := s.persistRun(ctx, uow, session, record, output, runErr); err != nil {
		return nil, err
	}

	s.publishStepEvent(ctx, session, researcherId, record)

	return toStepRecordResponse(record), nil
}

// buildRecord normalizes an agent run into the one terminal record this
// execution will persist. Failures become a failed record with confidence
// 0; the caller still gets a record back.
func (s *pipelineService) buildRecord(sessionId uuid.UUID, step entity.StepType, output *agents.Output, runErr error) *entity.StepRecord {
	record := &entity.StepRecord{
		SessionId: sessionId,
		StepType:  step,
	}

	if runErr != nil {
		reason := runErr.Error()
		warnings := []string{reason}
		if errors.Is(runErr, context.DeadlineExceeded) {
			warnings = append(warnings, fmt.Sprintf("generation timed out after %s", s.stepTimeout))
		}
		record.Result = fmt.Sprintf("%s step failed: %s", step, reason)
		record.Confidence = 0
		record.Warnings = warnings
		record.Metadata = json.RawMessage(`{}`)
		record.Status = entity.StepStatusFailed

		s.logger.Error("PipelineService", "Step failed", map[string]interface{}{
			"session_id": sessionId, "step": step, "error": reason,
		})
		return record
	}

	raw, err := pipeline.EncodeMetadata(output.Metadata)
	if err != nil {
		// Metadata that cannot be serialized degrades to a completed
		// record without it rather than failing the whole run.
		s.logger.Warn("PipelineService", "Dropping unserializable metadata", map[string]interface{}{
			"session_id": sessionId, "step": step, "error": err.Error(),
		})
		raw = json.RawMessage(`{}`)
	}

	record.Result = output.Summary
	record.Confidence = pipeline.ClampConfidence(output.Confidence)
	record.Sources = output.Sources
	record.Warnings = output.Warnings
	record.Metadata = raw
	record.Status = entity.StepStatusCompleted
	return record
}

// persistRun writes the record, merges shared memory, and updates the
// session in one transaction.
func (s *pipelineService) persistRun(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session, record *entity.StepRecord, output *agents.Output, runErr error) error {
	var md pipeline.Metadata
	if runErr == nil && output != nil {
		md = output.Metadata
	}
	merged := pipeline.Merge(session.Memory, record.StepType, record.Status, md)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.StepRecordRepository().Create(ctx, record); err != nil {
		return err
	}

	now := time.Now()
	session.Memory = merged
	session.UpdatedAt = &now
	if err := uow.ResearchSessionRepository().Update(ctx, session); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *pipelineService) publishStepEvent(ctx context.Context, session *entity.Session, researcherId uuid.UUID, record *entity.StepRecord) {
	if s.publisherService == nil {
		return
	}

	eventType := "STEP_COMPLETED"
	if record.Status == entity.StepStatusFailed {
		eventType = "STEP_FAILED"
	}

	messages := []dto.PipelineEventMessage{{
		EventType:    eventType,
		SessionId:    session.Id,
		ResearcherId: researcherId,
		StepType:     string(record.StepType),
		RecordId:     record.Id,
		Status:       string(record.Status),
	}}

	// MAP completing means the core pipeline reached its terminal step.
	if record.StepType == entity.StepMap && record.Status == entity.StepStatusCompleted {
		messages = append(messages, dto.PipelineEventMessage{
			EventType:    "PIPELINE_COMPLETED",
			SessionId:    session.Id,
			ResearcherId: researcherId,
		})
	}

	for _, m := range messages {
		payload, err := json.Marshal(m)
		if err != nil {
			continue
		}
		// Events are auxiliary; a publish failure never fails the request.
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("PipelineService", "Failed to publish pipeline event", map[string]interface{}{
				"event_type": m.EventType, "error": err.Error(),
			})
		}
	}
}

func (s *pipelineService) StepStatuses(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.StepStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	state, err := s.loadState(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	board := make([]*dto.StepStatusResponse, 0, len(pipeline.Steps))
	for _, step := range pipeline.Steps {
		ok, missing := pipeline.Eligible(step, state.statuses)
		row := &dto.StepStatusResponse{
			StepType: string(step),
			Status:   string(state.statuses[step]),
			Eligible: ok,
		}
		for _, m := range missing {
			row.MissingDependencies = append(row.MissingDependencies, string(m))
		}
		board = append(board, row)
	}
	return board, nil
}

func (s *pipelineService) ListRecords(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.StepRecordResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	records, err := uow.StepRecordRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionId},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.StepRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, toStepRecordResponse(r))
	}
	return responses, nil
}

func toStepRecordResponse(r *entity.StepRecord) *dto.StepRecordResponse {
	return &dto.StepRecordResponse{
		Id:           r.Id,
		SessionId:    r.SessionId,
		StepType:     string(r.StepType),
		Result:       r.Result,
		Confidence:   r.Confidence,
		Sources:      r.Sources,
		Warnings:     r.Warnings,
		Metadata:     r.Metadata,
		Status:       string(r.Status),
		UserFeedback: string(r.UserFeedback),
		CreatedAt:    r.CreatedAt,
	}
}
