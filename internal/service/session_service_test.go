package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	store        *memory.Store
	factory      unitofwork.RepositoryFactory
	service      ISessionService
	researcherId uuid.UUID
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	svc := NewSessionService(factory, nil, nopLogger{}, t.TempDir())

	ctx := context.Background()
	researcher := entity.Researcher{Id: uuid.New(), Email: "r@example.com", FullName: "R"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ResearcherRepository().Create(ctx, &researcher))

	return &sessionFixture{
		store:        store,
		factory:      factory,
		service:      svc,
		researcherId: researcher.Id,
	}
}

func (f *sessionFixture) createSession(t *testing.T, title, question string) uuid.UUID {
	t.Helper()
	res, err := f.service.Create(context.Background(), f.researcherId, &dto.CreateSessionRequest{
		Title:    title,
		Question: question,
	})
	require.NoError(t, err)
	return res.Id
}

func (f *sessionFixture) addRecord(t *testing.T, sessionId uuid.UUID, record entity.StepRecord) int64 {
	t.Helper()
	record.SessionId = sessionId
	if record.Metadata == nil {
		record.Metadata = json.RawMessage(`{}`)
	}
	err := f.factory.NewUnitOfWork(context.Background()).StepRecordRepository().Create(context.Background(), &record)
	require.NoError(t, err)
	return record.Id
}

func TestSessionCreateInitializesMemory(t *testing.T) {
	f := newSessionFixture(t)
	id := f.createSession(t, "iPSC Models", "How do iPSC-derived neurons model Parkinson's?")

	res, err := f.service.Show(context.Background(), f.researcherId, id)
	require.NoError(t, err)

	assert.Equal(t, "iPSC Models", res.Title)
	assert.Empty(t, res.Memory.Focus)
	assert.Empty(t, res.Memory.Keywords)
	assert.Zero(t, res.Memory.PaperCount)
	require.Len(t, res.Memory.AgentProgress, len(pipeline.Steps))
	for step, status := range res.Memory.AgentProgress {
		assert.Equal(t, "pending", status, "step %s should start pending", step)
	}
}

func TestSessionListFiltersAndOrders(t *testing.T) {
	f := newSessionFixture(t)
	f.createSession(t, "Coral Bleaching", "What accelerates coral reef bleaching events?")
	f.createSession(t, "Battery Chemistry", "Which solid electrolytes scale to production?")

	all, err := f.service.List(context.Background(), f.researcherId, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := f.service.List(context.Background(), f.researcherId, "coral")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Coral Bleaching", matched[0].Title)

	// Query also matches the research question.
	matched, err = f.service.List(context.Background(), f.researcherId, "electrolytes")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Battery Chemistry", matched[0].Title)

	none, err := f.service.List(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Empty(t, none, "sessions are isolated per researcher")
}

func TestSessionUpdateAndOwnership(t *testing.T) {
	f := newSessionFixture(t)
	id := f.createSession(t, "Original", "The original research question here.")

	_, err := f.service.Update(context.Background(), f.researcherId, &dto.UpdateSessionRequest{
		Id:       id,
		Title:    "Renamed",
		Question: "The refined research question here.",
	})
	require.NoError(t, err)

	res, err := f.service.Show(context.Background(), f.researcherId, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", res.Title)
	assert.NotNil(t, res.UpdatedAt)

	_, err = f.service.Update(context.Background(), uuid.New(), &dto.UpdateSessionRequest{
		Id:       id,
		Title:    "Hijacked",
		Question: "Should never be visible to anyone.",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionDeleteCascades(t *testing.T) {
	f := newSessionFixture(t)
	id := f.createSession(t, "Doomed", "A session about to be deleted entirely.")
	f.addRecord(t, id, entity.StepRecord{StepType: entity.StepThesis, Status: entity.StepStatusCompleted})

	ctx := context.Background()
	file := entity.UploadedFile{SessionId: id, OriginalFilename: "notes.txt", ContentType: "text/plain", Size: 12}
	require.NoError(t, f.factory.NewUnitOfWork(ctx).UploadedFileRepository().Create(ctx, &file))

	require.NoError(t, f.service.Delete(ctx, f.researcherId, id))

	_, err := f.service.Show(ctx, f.researcherId, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	uow := f.factory.NewUnitOfWork(ctx)
	records, err := uow.StepRecordRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	files, err := uow.UploadedFileRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSessionStatistics(t *testing.T) {
	f := newSessionFixture(t)
	id := f.createSession(t, "Stats", "How are the run statistics aggregated?")

	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepThesis, Status: entity.StepStatusCompleted,
		Confidence: 80, Sources: []string{"a", "b"},
	})
	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepSearch, Status: entity.StepStatusCompleted,
		Confidence: 60, Warnings: []string{"partial results"},
	})
	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepReader, Status: entity.StepStatusFailed,
		Confidence: 0, Warnings: []string{"backend down"},
	})
	// A re-run of a completed step counts as a record, not a new step.
	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepThesis, Status: entity.StepStatusCompleted,
		Confidence: 100,
	})

	stats, err := f.service.Statistics(context.Background(), f.researcherId, id)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalRecords)
	assert.Equal(t, 3, stats.CompletedRecords)
	assert.Equal(t, 1, stats.FailedRecords)
	assert.Equal(t, 2, stats.TotalSources)
	assert.Equal(t, 2, stats.TotalWarnings)
	assert.InDelta(t, 80.0, stats.AverageConfidence, 0.001)
	// Two distinct completed step types out of seven.
	assert.InDelta(t, 2.0/7.0, stats.CompletionRate, 0.001)
}

func TestSessionExportImportRoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	id := f.createSession(t, "Archive Me", "Does the archive survive a round trip?")

	raw, err := pipeline.EncodeMetadata(pipeline.ThesisMetadata{Summary: "focus", Keywords: []string{"kw"}})
	require.NoError(t, err)
	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepThesis, Status: entity.StepStatusCompleted,
		Result: "thesis", Confidence: 75, Metadata: raw,
		UserFeedback: entity.FeedbackAccepted,
	})
	f.addRecord(t, id, entity.StepRecord{
		StepType: entity.StepSearch, Status: entity.StepStatusFailed,
		Result: "search failed", Warnings: []string{"no results"},
	})

	ctx := context.Background()
	file := entity.UploadedFile{SessionId: id, OriginalFilename: "paper.pdf", ContentType: "application/pdf", Size: 1024, ExtractedText: "body"}
	require.NoError(t, f.factory.NewUnitOfWork(ctx).UploadedFileRepository().Create(ctx, &file))

	doc, err := f.service.Export(ctx, f.researcherId, id)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, "thesis", doc.Records[0].StepType, "archive reads oldest first")
	require.Len(t, doc.Files, 1)

	// The document survives serialization, like a client saving it to disk.
	blob, err := json.Marshal(doc)
	require.NoError(t, err)
	var reloaded dto.SessionExportDocument
	require.NoError(t, json.Unmarshal(blob, &reloaded))

	imported, err := f.service.Import(ctx, f.researcherId, &reloaded)
	require.NoError(t, err)
	assert.NotEqual(t, id, imported.Id, "import always mints a fresh session")

	res, err := f.service.Show(ctx, f.researcherId, imported.Id)
	require.NoError(t, err)
	assert.Equal(t, "Archive Me", res.Title)

	uow := f.factory.NewUnitOfWork(ctx)
	records, err := uow.StepRecordRepository().FindAll(ctx)
	require.NoError(t, err)
	imports := 0
	for _, r := range records {
		if r.SessionId == imported.Id {
			imports++
			if r.StepType == entity.StepThesis {
				assert.Equal(t, entity.FeedbackAccepted, r.UserFeedback)
				assert.Equal(t, 75, r.Confidence)
			}
		}
	}
	assert.Equal(t, 2, imports)
}

func TestSessionImportRejectsMalformedDocument(t *testing.T) {
	f := newSessionFixture(t)

	doc := &dto.SessionExportDocument{
		Version: 1,
		Session: dto.ExportedSession{Title: "Bad", Question: "A document with a bogus record."},
		Records: []dto.ExportedRecord{{StepType: "divination", Status: "completed"}},
	}

	_, err := f.service.Import(context.Background(), f.researcherId, doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidImport))

	// The rejected import must leave nothing behind.
	sessions, err := f.service.List(context.Background(), f.researcherId, "")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
