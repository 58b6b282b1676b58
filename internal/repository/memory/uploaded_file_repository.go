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
)

type UploadedFileRepository struct {
	store *Store
}

func NewUploadedFileRepository(store *Store) contract.UploadedFileRepository {
	return &UploadedFileRepository{store: store}
}

func fileMatches(f entity.UploadedFile, spec specification.Specification) (bool, error) {
	switch sp := spec.(type) {
	case specification.BySession:
		return f.SessionId == sp.SessionID, nil
	case specification.OrderBy:
		return true, nil
	default:
		return false, fmt.Errorf("memory uploaded file repository: unsupported spec %T", spec)
	}
}

func (r *UploadedFileRepository) Create(ctx context.Context, file *entity.UploadedFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	file.Id = r.store.nextFile
	r.store.nextFile++
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	r.store.files = append(r.store.files, *file)
	return nil
}

func (r *UploadedFileRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UploadedFile, error) {
	files, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

func (r *UploadedFileRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*entity.UploadedFile
	for _, f := range r.store.files {
		match := true
		for _, spec := range specs {
			ok, err := fileMatches(f, spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			copied := f
			result = append(result, &copied)
		}
	}

	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok {
			sort.SliceStable(result, func(i, j int) bool {
				if order.Desc {
					return result[i].Id > result[j].Id
				}
				return result[i].Id < result[j].Id
			})
		}
	}
	return result, nil
}

func (r *UploadedFileRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	files, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(files)), nil
}

func (r *UploadedFileRepository) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.files[:0]
	for _, f := range r.store.files {
		if f.SessionId != sessionId {
			kept = append(kept, f)
		}
	}
	r.store.files = kept
	return nil
}
