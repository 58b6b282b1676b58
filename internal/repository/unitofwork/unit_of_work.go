package unitofwork

import (
	"context"

	"ai-research-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ResearcherRepository() contract.ResearcherRepository
	ResearchSessionRepository() contract.ResearchSessionRepository
	StepRecordRepository() contract.StepRecordRepository
	UploadedFileRepository() contract.UploadedFileRepository
}
