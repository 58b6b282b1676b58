package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/contract"
	"ai-research-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) contract.ResearchSessionRepository {
	return &SessionRepository{store: store}
}

// sessionMatches evaluates the spec subset session queries use. An
// unrecognized spec is a programming error, surfaced loudly instead of
// silently matching everything.
func sessionMatches(s entity.Session, spec specification.Specification) (bool, error) {
	switch sp := spec.(type) {
	case specification.ByID:
		return s.Id == sp.ID, nil
	case specification.OwnedByResearcher:
		return s.ResearcherId == sp.ResearcherID, nil
	case specification.SessionSearchQuery:
		q := strings.ToLower(sp.Query)
		return strings.Contains(strings.ToLower(s.Title), q) ||
			strings.Contains(strings.ToLower(s.Question), q), nil
	case specification.OrderBy:
		return true, nil
	default:
		return false, fmt.Errorf("memory session repository: unsupported spec %T", spec)
	}
}

func sortSessions(sessions []*entity.Session, specs []specification.Specification) {
	for _, spec := range specs {
		order, ok := spec.(specification.OrderBy)
		if !ok {
			continue
		}
		sort.SliceStable(sessions, func(i, j int) bool {
			var ti, tj time.Time
			switch order.Field {
			case "updated_at":
				ti, tj = sessionUpdated(sessions[i]), sessionUpdated(sessions[j])
			default:
				ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
			}
			if order.Desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
	}
}

func sessionUpdated(s *entity.Session) time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.store.sessions[session.Id] = cloneSession(*session)
	return nil
}

func (r *SessionRepository) Update(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.SessionUpdateErr; err != nil {
		r.store.SessionUpdateErr = nil
		return err
	}
	if _, ok := r.store.sessions[session.Id]; !ok {
		return fmt.Errorf("memory session repository: session %s not found", session.Id)
	}
	r.store.sessions[session.Id] = cloneSession(*session)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.sessions, id)
	return nil
}

func (r *SessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	sessions, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

func (r *SessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*entity.Session
	for _, s := range r.store.sessions {
		match := true
		for _, spec := range specs {
			ok, err := sessionMatches(s, spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				match = false
				break
			}
		}
		if match {
			copied := cloneSession(s)
			result = append(result, &copied)
		}
	}
	sortSessions(result, specs)
	return result, nil
}

func (r *SessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	sessions, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}
