package memory

import (
	"context"
	"fmt"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ResearcherRepository struct {
	store *Store
}

func NewResearcherRepository(store *Store) contract.ResearcherRepository {
	return &ResearcherRepository{store: store}
}

func researcherMatches(r entity.Researcher, spec specification.Specification) (bool, error) {
	switch sp := spec.(type) {
	case specification.ByID:
		return r.Id == sp.ID, nil
	case specification.ByEmail:
		return r.Email == sp.Email, nil
	case specification.ByOrcid:
		return r.OrcidID != nil && *r.OrcidID == sp.OrcidID, nil
	case specification.OrderBy:
		return true, nil
	default:
		return false, fmt.Errorf("memory researcher repository: unsupported spec %T", spec)
	}
}

func (r *ResearcherRepository) Create(ctx context.Context, researcher *entity.Researcher) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if researcher.Id == uuid.Nil {
		researcher.Id = uuid.New()
	}
	if researcher.CreatedAt.IsZero() {
		researcher.CreatedAt = time.Now()
	}
	r.store.researchers[researcher.Id] = cloneResearcher(*researcher)
	return nil
}

func (r *ResearcherRepository) Update(ctx context.Context, researcher *entity.Researcher) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.researchers[researcher.Id]; !ok {
		return fmt.Errorf("memory researcher repository: researcher %s not found", researcher.Id)
	}
	r.store.researchers[researcher.Id] = cloneResearcher(*researcher)
	return nil
}

func (r *ResearcherRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Researcher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, res := range r.store.researchers {
		match := true
		for _, spec := range specs {
			ok, err := researcherMatches(res, spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			copied := cloneResearcher(res)
			return &copied, nil
		}
	}
	return nil, nil
}
