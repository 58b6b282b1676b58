package unitofwork

import (
	"context"
	"fmt"

	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // The active transaction (or just db if no tx) - actually we should keep track if we are in tx
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ResearcherRepository() contract.ResearcherRepository {
	return implementation.NewResearcherRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ResearchSessionRepository() contract.ResearchSessionRepository {
	return implementation.NewResearchSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StepRecordRepository() contract.StepRecordRepository {
	return implementation.NewStepRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UploadedFileRepository() contract.UploadedFileRepository {
	return implementation.NewUploadedFileRepository(u.getDB())
}
