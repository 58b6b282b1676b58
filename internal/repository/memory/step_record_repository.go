package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StepRecordRepository struct {
	store *Store
}

func NewStepRecordRepository(store *Store) contract.StepRecordRepository {
	return &StepRecordRepository{store: store}
}

func recordMatches(r entity.StepRecord, spec specification.Specification) (bool, error) {
	switch sp := spec.(type) {
	case specification.ByRecordID:
		return r.Id == sp.ID, nil
	case specification.BySession:
		return r.SessionId == sp.SessionID, nil
	case specification.ByStepType:
		return string(r.StepType) == sp.StepType, nil
	case specification.ByStatus:
		return string(r.Status) == sp.Status, nil
	case specification.OrderBy:
		return true, nil
	default:
		return false, fmt.Errorf("memory step record repository: unsupported spec %T", spec)
	}
}

func sortRecords(records []*entity.StepRecord, specs []specification.Specification) {
	for _, spec := range specs {
		order, ok := spec.(specification.OrderBy)
		if !ok {
			continue
		}
		// Records only ever sort by id; created_at ties under fast tests.
		sort.SliceStable(records, func(i, j int) bool {
			if order.Desc {
				return records[i].Id > records[j].Id
			}
			return records[i].Id < records[j].Id
		})
	}
}

func (r *StepRecordRepository) Create(ctx context.Context, record *entity.StepRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.RecordCreateErr; err != nil {
		r.store.RecordCreateErr = nil
		return err
	}

	record.Id = r.store.nextRecord
	r.store.nextRecord++
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.store.records = append(r.store.records, cloneRecord(*record))
	return nil
}

func (r *StepRecordRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepRecord, error) {
	records, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *StepRecordRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StepRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*entity.StepRecord
	for _, rec := range r.store.records {
		match := true
		for _, spec := range specs {
			ok, err := recordMatches(rec, spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			copied := cloneRecord(rec)
			result = append(result, &copied)
		}
	}
	sortRecords(result, specs)
	return result, nil
}

func (r *StepRecordRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	records, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

func (r *StepRecordRepository) UpdateFeedback(ctx context.Context, id int64, decision entity.FeedbackDecision) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.records {
		if r.store.records[i].Id == id {
			r.store.records[i].UserFeedback = decision
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *StepRecordRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.records[:0]
	for _, rec := range r.store.records {
		if rec.SessionId != sessionId {
			kept = append(kept, rec)
		}
	}
	r.store.records = kept
	return nil
}
