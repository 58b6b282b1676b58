// FILE: internal/service/upload_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/agents"
	"ai-research-be/pkg/document"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
)

type IUploadService interface {
	// Ingest stores the file, extracts its text, and runs file analysis.
	// Analysis failures come back as a failed record; the upload itself
	// still succeeds.
	Ingest(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error)
	ListFiles(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.UploadedFileResponse, error)
}

type uploadService struct {
	uowFactory       unitofwork.RepositoryFactory
	registry         *agents.Registry
	publisherService IPublisherService
	logger           logger.ILogger
	uploadDir        string
	maxBytes         int64
	stepTimeout      time.Duration
}

func NewUploadService(
	uowFactory unitofwork.RepositoryFactory,
	registry *agents.Registry,
	publisherService IPublisherService,
	log logger.ILogger,
	uploadDir string,
	maxBytes int64,
	stepTimeout time.Duration,
) IUploadService {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	if stepTimeout <= 0 {
		stepTimeout = 120 * time.Second
	}
	return &uploadService{
		uowFactory:       uowFactory,
		registry:         registry,
		publisherService: publisherService,
		logger:           log,
		uploadDir:        uploadDir,
		maxBytes:         maxBytes,
		stepTimeout:      stepTimeout,
	}
}

func (s *uploadService) Ingest(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Session must exist and belong to the caller
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

	// 2. Validate size and content type before touching the disk
	if fileHeader.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	contentType := document.NormalizeContentType(fileHeader.Header.Get("Content-Type"))
	if !document.IsSupported(contentType) {
		return nil, ErrUnsupportedFileType
	}

	// 3. Read the upload
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	// 4. Store under the session's upload directory
	dir := filepath.Join(s.uploadDir, "sessions", sessionId.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	ext := filepath.Ext(fileHeader.Filename)
	storedName := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
	dstPath := filepath.Join(dir, storedName)
	if err := os.WriteFile(dstPath, data, 0644); err != nil {
		return nil, err
	}

	// 5. Extract text for analysis. Stored-only types yield no text; the
	// file agent downgrades its confidence instead of failing.
	text, err := document.Extract(contentType, data)
	if err != nil {
		return nil, ErrUnsupportedFileType
	}

	file := &entity.UploadedFile{
		SessionId:        sessionId,
		StoredFilename:   storedName,
		OriginalFilename: fileHeader.Filename,
		ContentType:      contentType,
		Size:             int64(len(data)),
		ExtractedText:    text,
	}

	// 6. Run the file analysis agent
	agent, err := s.registry.Get(entity.StepFile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("UploadService", "Analyzing uploaded file", map[string]interface{}{
		"session_id": sessionId, "filename": fileHeader.Filename, "content_type": contentType,
	})

	runCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	output, runErr := agent.Run(runCtx, agents.Input{
		Session:         session,
		FileText:        text,
		FileName:        fileHeader.Filename,
		FileContentType: contentType,
	})
	record := s.buildFileRecord(sessionId, output, runErr)

	// 7. Persist file, record, and merged memory together
	merged := pipeline.Merge(session.Memory, entity.StepFile, record.Status, completedMetadata(output, runErr))

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UploadedFileRepository().Create(ctx, file); err != nil {
		return nil, err
	}
	if err := uow.StepRecordRepository().Create(ctx, record); err != nil {
		return nil, err
	}

	now := time.Now()
	session.Memory = merged
	session.UpdatedAt = &now
	if err := uow.ResearchSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishFileEvent(ctx, dto.PipelineEventMessage{
		EventType:    "FILE_UPLOADED",
		SessionId:    sessionId,
		ResearcherId: researcherId,
		StepType:     string(entity.StepFile),
		RecordId:     record.Id,
		Status:       string(record.Status),
	})

	return &dto.UploadResponse{
		File:   *toUploadedFileResponse(file),
		Record: *toStepRecordResponse(record),
	}, nil
}

func (s *uploadService) ListFiles(ctx context.Context, researcherId uuid.UUID, sessionId uuid.UUID) ([]*dto.UploadedFileResponse, error) {
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

	files, err := uow.UploadedFileRepository().FindAll(ctx,
		specification.BySession{SessionID: sessionId},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.UploadedFileResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, toUploadedFileResponse(f))
	}
	return responses, nil
}

func (s *uploadService) buildFileRecord(sessionId uuid.UUID, output *agents.Output, runErr error) *entity.StepRecord {
	record := &entity.StepRecord{
		SessionId: sessionId,
		StepType:  entity.StepFile,
	}

	if runErr != nil {
		reason := runErr.Error()
		record.Result = fmt.Sprintf("file analysis failed: %s", reason)
		record.Confidence = 0
		record.Warnings = []string{reason}
		record.Metadata = json.RawMessage(`{}`)
		record.Status = entity.StepStatusFailed

		s.logger.Error("UploadService", "File analysis failed", map[string]interface{}{
			"session_id": sessionId, "error": reason,
		})
		return record
	}

	raw, err := pipeline.EncodeMetadata(output.Metadata)
	if err != nil {
		s.logger.Warn("UploadService", "Dropping unserializable metadata", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
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

func (s *uploadService) publishFileEvent(ctx context.Context, msg dto.PipelineEventMessage) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("UploadService", "Failed to publish upload event", map[string]interface{}{
			"event_type": msg.EventType, "error": err.Error(),
		})
	}
}

func completedMetadata(output *agents.Output, runErr error) pipeline.Metadata {
	if runErr != nil || output == nil {
		return nil
	}
	return output.Metadata
}

func toUploadedFileResponse(f *entity.UploadedFile) *dto.UploadedFileResponse {
	return &dto.UploadedFileResponse{
		Id:               f.Id,
		SessionId:        f.SessionId,
		OriginalFilename: f.OriginalFilename,
		ContentType:      f.ContentType,
		Size:             f.Size,
		HasText:          f.ExtractedText != "",
		CreatedAt:        f.CreatedAt,
	}
}
