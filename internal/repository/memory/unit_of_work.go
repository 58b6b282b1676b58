package memory

import (
	"context"
	"fmt"

	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/unitofwork"
)

// UnitOfWork gives the memory store the same transactional surface as
// the GORM implementation: Begin snapshots the store, Rollback restores
// it, Commit discards the snapshot. Writes between Begin and a failed
// Commit therefore never become visible, matching the no-torn-writes
// guarantee the services rely on.
type UnitOfWork struct {
	store *Store
	inTx  bool
}

func NewUnitOfWork(store *Store) unitofwork.UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	u.store.takeSnapshot()
	u.store.mu.Unlock()
	u.inTx = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	u.store.dropSnapshot()
	u.store.mu.Unlock()
	u.inTx = false
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.restoreSnapshot()
	u.store.mu.Unlock()
	u.inTx = false
	return nil
}

func (u *UnitOfWork) ResearcherRepository() contract.ResearcherRepository {
	return NewResearcherRepository(u.store)
}

func (u *UnitOfWork) ResearchSessionRepository() contract.ResearchSessionRepository {
	return NewSessionRepository(u.store)
}

func (u *UnitOfWork) StepRecordRepository() contract.StepRecordRepository {
	return NewStepRecordRepository(u.store)
}

func (u *UnitOfWork) UploadedFileRepository() contract.UploadedFileRepository {
	return NewUploadedFileRepository(u.store)
}

// Factory hands every unit of work the same store.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return NewUnitOfWork(f.store)
}
