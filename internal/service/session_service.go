// FILE: internal/service/session_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
)

const exportDocumentVersion = 1

type ISessionService interface {
	Create(ctx context.Context, researcherId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	// List returns the researcher's sessions newest first; a non-empty
	// query narrows them by title or question.
	List(ctx context.Context, researcherId uuid.UUID, query string) ([]*dto.SessionListItemResponse, error)
	Show(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error)
	Update(ctx context.Context, researcherId uuid.UUID, req *dto.UpdateSessionRequest) (*dto.UpdateSessionResponse, error)
	Delete(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) error
	Statistics(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionStatisticsResponse, error)
	Export(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionExportDocument, error)
	Import(ctx context.Context, researcherId uuid.UUID, doc *dto.SessionExportDocument) (*dto.ImportSessionResponse, error)
}

type sessionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
	uploadDir        string
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
	uploadDir string,
) ISessionService {
	return &sessionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
		uploadDir:        uploadDir,
	}
}

func (s *sessionService) Create(ctx context.Context, researcherId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.Session{
		Id:           uuid.New(),
		ResearcherId: researcherId,
		Title:        req.Title,
		Question:     req.Question,
		Memory:       pipeline.NewSharedMemory(),
		CreatedAt:    time.Now(),
	}

	if err := uow.ResearchSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	s.publishSessionEvent(ctx, dto.PipelineEventMessage{
		EventType:    "SESSION_CREATED",
		SessionId:    session.Id,
		ResearcherId: researcherId,
	})

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) List(ctx context.Context, researcherId uuid.UUID, query string) ([]*dto.SessionListItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedByResearcher{ResearcherID: researcherId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	}
	if query != "" {
		specs = append(specs, specification.SessionSearchQuery{Query: query})
	}

	sessions, err := uow.ResearchSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SessionListItemResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, &dto.SessionListItemResponse{
			Id:        session.Id,
			Title:     session.Title,
			Question:  session.Question,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return items, nil
}

func (s *sessionService) Show(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	return &dto.SessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		Question:  session.Question,
		Memory:    sharedMemoryToResponse(session.Memory),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func (s *sessionService) Update(ctx context.Context, researcherId uuid.UUID, req *dto.UpdateSessionRequest) (*dto.UpdateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	session.Title = req.Title
	session.Question = req.Question
	session.UpdatedAt = &now

	if err := uow.ResearchSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	return &dto.UpdateSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) Delete(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.StepRecordRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.UploadedFileRepository().DeleteBySessionId(ctx, id); err != nil {
		return err
	}
	if err := uow.ResearchSessionRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Stored uploads go after the commit; a leftover directory is only
	// disk garbage, never dangling rows.
	dir := filepath.Join(s.uploadDir, "sessions", id.String())
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("SessionService", "Failed to remove session upload directory", map[string]interface{}{
			"session_id": id, "dir": dir, "error": err.Error(),
		})
	}

	return nil
}

func (s *sessionService) Statistics(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionStatisticsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	records, err := uow.StepRecordRepository().FindAll(ctx,
		specification.BySession{SessionID: id},
	)
	if err != nil {
		return nil, err
	}

	stats := &dto.SessionStatisticsResponse{
		SessionId:    id,
		TotalRecords: len(records),
		PaperCount:   session.Memory.PaperCount,
	}

	completedSteps := make(map[entity.StepType]bool)
	confidenceSum := 0
	for _, r := range records {
		stats.TotalSources += len(r.Sources)
		stats.TotalWarnings += len(r.Warnings)
		switch r.Status {
		case entity.StepStatusCompleted:
			stats.CompletedRecords++
			confidenceSum += r.Confidence
			completedSteps[r.StepType] = true
		case entity.StepStatusFailed:
			stats.FailedRecords++
		}
	}

	if stats.CompletedRecords > 0 {
		stats.AverageConfidence = float64(confidenceSum) / float64(stats.CompletedRecords)
	}
	stats.CompletionRate = float64(len(completedSteps)) / float64(len(pipeline.Steps))

	return stats, nil
}

func (s *sessionService) Export(ctx context.Context, researcherId uuid.UUID, id uuid.UUID) (*dto.SessionExportDocument, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ResearchSessionRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByResearcher{ResearcherID: researcherId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	// Oldest first: the archive should read like the session unfolded.
	records, err := uow.StepRecordRepository().FindAll(ctx,
		specification.BySession{SessionID: id},
		specification.OrderBy{Field: "id", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	files, err := uow.UploadedFileRepository().FindAll(ctx,
		specification.BySession{SessionID: id},
		specification.OrderBy{Field: "id", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	doc := &dto.SessionExportDocument{
		Version:    exportDocumentVersion,
		ExportedAt: time.Now(),
		Session: dto.ExportedSession{
			Title:     session.Title,
			Question:  session.Question,
			Memory:    sharedMemoryToResponse(session.Memory),
			CreatedAt: session.CreatedAt,
		},
		Records: make([]dto.ExportedRecord, 0, len(records)),
		Files:   make([]dto.ExportedFile, 0, len(files)),
	}

	for _, r := range records {
		doc.Records = append(doc.Records, dto.ExportedRecord{
			StepType:     string(r.StepType),
			Result:       r.Result,
			Confidence:   r.Confidence,
			Sources:      r.Sources,
			Warnings:     r.Warnings,
			Metadata:     r.Metadata,
			Status:       string(r.Status),
			UserFeedback: string(r.UserFeedback),
			CreatedAt:    r.CreatedAt,
		})
	}
	for _, f := range files {
		doc.Files = append(doc.Files, dto.ExportedFile{
			OriginalFilename: f.OriginalFilename,
			ContentType:      f.ContentType,
			Size:             f.Size,
			ExtractedText:    f.ExtractedText,
			CreatedAt:        f.CreatedAt,
		})
	}

	return doc, nil
}

func (s *sessionService) Import(ctx context.Context, researcherId uuid.UUID, doc *dto.SessionExportDocument) (*dto.ImportSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	memory, err := responseToSharedMemory(doc.Session.Memory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	session := entity.Session{
		Id:           uuid.New(),
		ResearcherId: researcherId,
		Title:        doc.Session.Title,
		Question:     doc.Session.Question,
		Memory:       memory,
		CreatedAt:    time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ResearchSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// Creation order preserves the archive order; the new ids stay
	// monotonic with it.
	for i, rec := range doc.Records {
		step, err := pipeline.ParseStepType(rec.StepType)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidImport, i, err)
		}
		status := entity.StepStatus(rec.Status)
		if status != entity.StepStatusCompleted && status != entity.StepStatusFailed {
			return nil, fmt.Errorf("%w: record %d: invalid status %q", ErrInvalidImport, i, rec.Status)
		}
		var feedback entity.FeedbackDecision
		if rec.UserFeedback != "" {
			feedback, err = parseFeedbackDecision(rec.UserFeedback)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidImport, i, err)
			}
		}

		record := entity.StepRecord{
			SessionId:    session.Id,
			StepType:     step,
			Result:       rec.Result,
			Confidence:   rec.Confidence,
			Sources:      rec.Sources,
			Warnings:     rec.Warnings,
			Metadata:     rec.Metadata,
			Status:       status,
			UserFeedback: feedback,
			CreatedAt:    rec.CreatedAt,
		}
		if err := uow.StepRecordRepository().Create(ctx, &record); err != nil {
			return nil, err
		}
	}

	// File rows come back as descriptors only; the stored bytes are not
	// part of the archive.
	for _, f := range doc.Files {
		file := entity.UploadedFile{
			SessionId:        session.Id,
			OriginalFilename: f.OriginalFilename,
			ContentType:      f.ContentType,
			Size:             f.Size,
			ExtractedText:    f.ExtractedText,
			CreatedAt:        f.CreatedAt,
		}
		if err := uow.UploadedFileRepository().Create(ctx, &file); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishSessionEvent(ctx, dto.PipelineEventMessage{
		EventType:    "SESSION_CREATED",
		SessionId:    session.Id,
		ResearcherId: researcherId,
	})

	return &dto.ImportSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) publishSessionEvent(ctx context.Context, msg dto.PipelineEventMessage) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("SessionService", "Failed to publish session event", map[string]interface{}{
			"event_type": msg.EventType, "error": err.Error(),
		})
	}
}

func sharedMemoryToResponse(mem entity.SharedMemory) dto.SharedMemoryResponse {
	progress := make(map[string]string, len(mem.AgentProgress))
	for step, status := range mem.AgentProgress {
		progress[string(step)] = string(status)
	}
	return dto.SharedMemoryResponse{
		Focus:         mem.Focus,
		Keywords:      mem.Keywords,
		Variables:     mem.Variables,
		PaperCount:    mem.PaperCount,
		AgentProgress: progress,
		LastUpdate:    mem.LastUpdate,
	}
}

func responseToSharedMemory(resp dto.SharedMemoryResponse) (entity.SharedMemory, error) {
	mem := pipeline.NewSharedMemory()
	mem.Focus = resp.Focus
	if len(resp.Keywords) > 0 {
		mem.Keywords = resp.Keywords
	}
	for k, v := range resp.Variables {
		mem.Variables[k] = v
	}
	mem.PaperCount = resp.PaperCount
	for stepStr, statusStr := range resp.AgentProgress {
		step, err := pipeline.ParseStepType(stepStr)
		if err != nil {
			return entity.SharedMemory{}, fmt.Errorf("memory progress: %w", err)
		}
		mem.AgentProgress[step] = entity.StepStatus(statusStr)
	}
	if !resp.LastUpdate.IsZero() {
		mem.LastUpdate = resp.LastUpdate
	}
	return mem, nil
}
