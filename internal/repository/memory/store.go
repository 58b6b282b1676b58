// Package memory provides map-backed implementations of the repository
// contracts. The REST server runs on the GORM implementations; this
// package backs the service tests and any tooling that wants the full
// repository surface without a database.
package memory

import (
	"sync"

	"ai-research-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the shared backing state of one in-memory "database". All
// repositories created from the same Store see the same data.
type Store struct {
	mu sync.Mutex

	researchers map[uuid.UUID]entity.Researcher
	sessions    map[uuid.UUID]entity.Session
	records     []entity.StepRecord // ascending by id
	files       []entity.UploadedFile
	nextRecord  int64
	nextFile    int64

	snapshot *storeSnapshot

	// Error injection for failure-path tests. A set error is returned by
	// the corresponding operation and then cleared.
	RecordCreateErr  error
	SessionUpdateErr error
}

type storeSnapshot struct {
	researchers map[uuid.UUID]entity.Researcher
	sessions    map[uuid.UUID]entity.Session
	records     []entity.StepRecord
	files       []entity.UploadedFile
	nextRecord  int64
	nextFile    int64
}

func NewStore() *Store {
	return &Store{
		researchers: make(map[uuid.UUID]entity.Researcher),
		sessions:    make(map[uuid.UUID]entity.Session),
		nextRecord:  1,
		nextFile:    1,
	}
}

func (s *Store) takeSnapshot() {
	s.snapshot = &storeSnapshot{
		researchers: cloneResearchers(s.researchers),
		sessions:    cloneSessions(s.sessions),
		records:     cloneRecords(s.records),
		files:       cloneFiles(s.files),
		nextRecord:  s.nextRecord,
		nextFile:    s.nextFile,
	}
}

func (s *Store) restoreSnapshot() {
	if s.snapshot == nil {
		return
	}
	s.researchers = s.snapshot.researchers
	s.sessions = s.snapshot.sessions
	s.records = s.snapshot.records
	s.files = s.snapshot.files
	s.nextRecord = s.snapshot.nextRecord
	s.nextFile = s.snapshot.nextFile
	s.snapshot = nil
}

func (s *Store) dropSnapshot() {
	s.snapshot = nil
}

// --- deep copies: the shared-memory maps and record slices must never
// leak between the live state and a snapshot ---

func cloneResearchers(in map[uuid.UUID]entity.Researcher) map[uuid.UUID]entity.Researcher {
	out := make(map[uuid.UUID]entity.Researcher, len(in))
	for k, v := range in {
		out[k] = cloneResearcher(v)
	}
	return out
}

func cloneResearcher(r entity.Researcher) entity.Researcher {
	if r.PasswordHash != nil {
		hash := *r.PasswordHash
		r.PasswordHash = &hash
	}
	if r.OrcidID != nil {
		id := *r.OrcidID
		r.OrcidID = &id
	}
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		r.DeletedAt = &t
	}
	return r
}

func cloneSessions(in map[uuid.UUID]entity.Session) map[uuid.UUID]entity.Session {
	out := make(map[uuid.UUID]entity.Session, len(in))
	for k, v := range in {
		out[k] = cloneSession(v)
	}
	return out
}

func cloneSession(s entity.Session) entity.Session {
	s.Memory = cloneMemory(s.Memory)
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		s.UpdatedAt = &t
	}
	if s.DeletedAt != nil {
		t := *s.DeletedAt
		s.DeletedAt = &t
	}
	return s
}

func cloneMemory(m entity.SharedMemory) entity.SharedMemory {
	keywords := make([]string, len(m.Keywords))
	copy(keywords, m.Keywords)
	m.Keywords = keywords

	variables := make(map[string]string, len(m.Variables))
	for k, v := range m.Variables {
		variables[k] = v
	}
	m.Variables = variables

	progress := make(map[entity.StepType]entity.StepStatus, len(m.AgentProgress))
	for k, v := range m.AgentProgress {
		progress[k] = v
	}
	m.AgentProgress = progress

	return m
}

func cloneRecords(in []entity.StepRecord) []entity.StepRecord {
	out := make([]entity.StepRecord, len(in))
	for i, r := range in {
		out[i] = cloneRecord(r)
	}
	return out
}

func cloneRecord(r entity.StepRecord) entity.StepRecord {
	sources := make([]string, len(r.Sources))
	copy(sources, r.Sources)
	r.Sources = sources

	warnings := make([]string, len(r.Warnings))
	copy(warnings, r.Warnings)
	r.Warnings = warnings

	if r.Metadata != nil {
		md := make([]byte, len(r.Metadata))
		copy(md, r.Metadata)
		r.Metadata = md
	}
	return r
}

func cloneFiles(in []entity.UploadedFile) []entity.UploadedFile {
	out := make([]entity.UploadedFile, len(in))
	copy(out, in)
	return out
}
