package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/pkg/agents"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeFileHeader builds a real multipart.FileHeader the way Fiber hands it
// to the service.
func makeFileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(int64(len(data)) + 4096)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

type uploadFixture struct {
	store        *memory.Store
	service      IUploadService
	agent        *stubAgent
	uploadDir    string
	researcherId uuid.UUID
	sessionId    uuid.UUID
}

func newUploadFixture(t *testing.T, maxBytes int64) *uploadFixture {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	uploadDir := t.TempDir()

	agent := &stubAgent{step: entity.StepFile, output: &agents.Output{
		Summary:    "file covers iPSC differentiation protocols",
		Confidence: 0.7,
		Metadata: pipeline.FileMetadata{
			Filename: "notes.txt", ContentType: "text/plain",
			Keywords: []string{"ipsc"}, Topics: []string{"differentiation"},
		},
	}}

	svc := NewUploadService(factory, agents.NewRegistry(agent), nil, nopLogger{}, uploadDir, maxBytes, time.Minute)

	ctx := context.Background()
	researcher := entity.Researcher{Id: uuid.New(), Email: "r@example.com", FullName: "R"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ResearcherRepository().Create(ctx, &researcher))
	session := entity.Session{
		Id:           uuid.New(),
		ResearcherId: researcher.Id,
		Title:        "Uploads",
		Question:     "What does the uploaded corpus contribute?",
		Memory:       pipeline.NewSharedMemory(),
	}
	require.NoError(t, factory.NewUnitOfWork(ctx).ResearchSessionRepository().Create(ctx, &session))

	return &uploadFixture{
		store:        store,
		service:      svc,
		agent:        agent,
		uploadDir:    uploadDir,
		researcherId: researcher.Id,
		sessionId:    session.Id,
	}
}

func TestIngestStoresFileAndRecord(t *testing.T) {
	f := newUploadFixture(t, 1024)
	fh := makeFileHeader(t, "notes.txt", "text/plain; charset=utf-8", []byte("iPSC differentiation notes\r\nline two"))

	res, err := f.service.Ingest(context.Background(), f.researcherId, f.sessionId, fh)
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", res.File.OriginalFilename)
	assert.Equal(t, "text/plain", res.File.ContentType, "charset parameter is stripped")
	assert.True(t, res.File.HasText)
	assert.Equal(t, "completed", res.Record.Status)
	assert.Equal(t, "file", res.Record.StepType)
	assert.Equal(t, 70, res.Record.Confidence)

	// The bytes landed under the session's directory.
	entries, err := os.ReadDir(filepath.Join(f.uploadDir, "sessions", f.sessionId.String()))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	uow := memory.NewFactory(f.store).NewUnitOfWork(context.Background())
	sessions, err := uow.ResearchSessionRepository().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, entity.StepStatusCompleted, sessions[0].Memory.AgentProgress[entity.StepFile])
}

func TestIngestRejectsOversizeUpload(t *testing.T) {
	f := newUploadFixture(t, 16)
	fh := makeFileHeader(t, "big.txt", "text/plain", bytes.Repeat([]byte("x"), 64))

	_, err := f.service.Ingest(context.Background(), f.researcherId, f.sessionId, fh)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	f := newUploadFixture(t, 1024)
	fh := makeFileHeader(t, "movie.mp4", "video/mp4", []byte("not really a video"))

	_, err := f.service.Ingest(context.Background(), f.researcherId, f.sessionId, fh)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestIngestAnalysisFailureKeepsUpload(t *testing.T) {
	f := newUploadFixture(t, 1024)
	f.agent.output = nil
	f.agent.err = errors.New("model backend unavailable")

	fh := makeFileHeader(t, "notes.txt", "text/plain", []byte("some research notes"))
	res, err := f.service.Ingest(context.Background(), f.researcherId, f.sessionId, fh)
	require.NoError(t, err, "a failed analysis must not fail the upload")

	assert.Equal(t, "failed", res.Record.Status)
	assert.Equal(t, 0, res.Record.Confidence)
	assert.NotEmpty(t, res.Record.Warnings)
	assert.True(t, res.File.HasText, "the file row is stored regardless")

	files, err := f.service.ListFiles(context.Background(), f.researcherId, f.sessionId)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestIngestRequiresOwnership(t *testing.T) {
	f := newUploadFixture(t, 1024)
	fh := makeFileHeader(t, "notes.txt", "text/plain", []byte("some research notes"))

	_, err := f.service.Ingest(context.Background(), uuid.New(), f.sessionId, fh)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListFilesNewestFirst(t *testing.T) {
	f := newUploadFixture(t, 1024)

	for _, name := range []string{"first.txt", "second.txt"} {
		fh := makeFileHeader(t, name, "text/plain", []byte("contents of "+name))
		_, err := f.service.Ingest(context.Background(), f.researcherId, f.sessionId, fh)
		require.NoError(t, err)
	}

	files, err := f.service.ListFiles(context.Background(), f.researcherId, f.sessionId)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "second.txt", files[0].OriginalFilename)
	assert.Equal(t, "first.txt", files[1].OriginalFilename)
}
