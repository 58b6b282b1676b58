package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/inflight"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/pkg/agents"
	"ai-research-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubAgent returns a fixed output or error for one step type.
type stubAgent struct {
	step   entity.StepType
	output *agents.Output
	err    error
	// blockUntilCancel makes Run wait for the context, simulating a
	// generation that outlives the step timeout.
	blockUntilCancel bool
	calls            int
}

func (a *stubAgent) StepType() entity.StepType { return a.step }

func (a *stubAgent) Run(ctx context.Context, in agents.Input) (*agents.Output, error) {
	a.calls++
	if a.blockUntilCancel {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.output, nil
}

func thesisOutput(confidence float64, keywords ...string) *agents.Output {
	return &agents.Output{
		Summary:    "thesis statement",
		Confidence: confidence,
		Metadata: pipeline.ThesisMetadata{
			Summary:   "thesis focus",
			Keywords:  keywords,
			Variables: map[string]string{"independent": "dose"},
		},
	}
}

type pipelineFixture struct {
	store        *memory.Store
	service      IPipelineService
	guard        inflight.ExecutionGuard
	researcherId uuid.UUID
	sessionId    uuid.UUID
}

func newPipelineFixture(t *testing.T, timeout time.Duration, agentSet ...agents.Agent) *pipelineFixture {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	guard := inflight.NewMemoryGuard(time.Minute)

	svc := NewPipelineService(factory, agents.NewRegistry(agentSet...), guard, nil, nopLogger{}, timeout)

	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)

	researcher := entity.Researcher{Id: uuid.New(), Email: "r@example.com", FullName: "R"}
	require.NoError(t, uow.ResearcherRepository().Create(ctx, &researcher))

	session := entity.Session{
		Id:           uuid.New(),
		ResearcherId: researcher.Id,
		Title:        "Session",
		Question:     "What drives the effect?",
		Memory:       pipeline.NewSharedMemory(),
	}
	require.NoError(t, uow.ResearchSessionRepository().Create(ctx, &session))

	return &pipelineFixture{
		store:        store,
		service:      svc,
		guard:        guard,
		researcherId: researcher.Id,
		sessionId:    session.Id,
	}
}

func (f *pipelineFixture) session(t *testing.T) *entity.Session {
	t.Helper()
	uow := memory.NewFactory(f.store).NewUnitOfWork(context.Background())
	sessions, err := uow.ResearchSessionRepository().FindAll(context.Background())
	require.NoError(t, err)
	for _, s := range sessions {
		if s.Id == f.sessionId {
			return s
		}
	}
	t.Fatalf("session %s not in store", f.sessionId)
	return nil
}

func (f *pipelineFixture) records(t *testing.T) []*entity.StepRecord {
	t.Helper()
	uow := memory.NewFactory(f.store).NewUnitOfWork(context.Background())
	records, err := uow.StepRecordRepository().FindAll(context.Background())
	require.NoError(t, err)
	return records
}

func TestExecuteStepPersistsRecordAndMergesMemory(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.87, "ipsc", "neurodegeneration")},
	)

	res, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 87, res.Confidence)
	assert.Equal(t, "thesis statement", res.Result)
	assert.NotZero(t, res.Id)

	session := f.session(t)
	assert.Equal(t, "thesis focus", session.Memory.Focus)
	assert.Equal(t, []string{"ipsc", "neurodegeneration"}, session.Memory.Keywords)
	assert.Equal(t, "dose", session.Memory.Variables["independent"])
	assert.Equal(t, entity.StepStatusCompleted, session.Memory.AgentProgress[entity.StepThesis])
	assert.Equal(t, entity.StepStatusPending, session.Memory.AgentProgress[entity.StepSearch])
	require.NotNil(t, session.UpdatedAt)

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, entity.StepStatusCompleted, records[0].Status)
}

func TestExecuteStepClampsConfidence(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(1.7)},
	)

	res, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Confidence)
}

func TestExecuteStepRejectsUnmetDependencies(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepSearch, output: &agents.Output{Summary: "papers"}},
	)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepSearch)
	require.Error(t, err)

	var unmet *DependencyUnmetError
	require.ErrorAs(t, err, &unmet)
	assert.Equal(t, entity.StepSearch, unmet.Step)
	assert.Equal(t, []entity.StepType{entity.StepThesis}, unmet.Missing)

	assert.Empty(t, f.records(t), "an ineligible step must not leave a record")
}

func TestExecuteStepNormalizesAgentFailure(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, err: errors.New("model backend unavailable")},
	)

	res, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err, "agent failures surface as failed records, not errors")

	assert.Equal(t, "failed", res.Status)
	assert.Equal(t, 0, res.Confidence)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "model backend unavailable")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, entity.StepStatusFailed, records[0].Status)

	session := f.session(t)
	assert.Equal(t, entity.StepStatusFailed, session.Memory.AgentProgress[entity.StepThesis])
	assert.Empty(t, session.Memory.Focus, "failed runs must not touch accumulated fields")
}

func TestExecuteStepTimesOutBlockedAgent(t *testing.T) {
	f := newPipelineFixture(t, 30*time.Millisecond,
		&stubAgent{step: entity.StepThesis, blockUntilCancel: true},
	)

	res, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	assert.Equal(t, "failed", res.Status)
	require.GreaterOrEqual(t, len(res.Warnings), 2)
	assert.Contains(t, res.Warnings[1], "timed out")
}

func TestExecuteStepRerunAppendsAndLatestWins(t *testing.T) {
	agent := &stubAgent{step: entity.StepThesis, output: thesisOutput(0.5, "first")}
	f := newPipelineFixture(t, time.Minute, agent)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	agent.output = thesisOutput(0.9, "second")
	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	records := f.records(t)
	require.Len(t, records, 2, "re-runs append, never overwrite")

	session := f.session(t)
	assert.Equal(t, []string{"second"}, session.Memory.Keywords, "the later run's merge wins")
}

func TestExecuteStepFailedRerunKeepsCompletedProgress(t *testing.T) {
	agent := &stubAgent{step: entity.StepThesis, output: thesisOutput(0.8, "kw")}
	searchAgent := &stubAgent{step: entity.StepSearch, output: &agents.Output{
		Summary:  "found papers",
		Metadata: pipeline.SearchMetadata{Papers: []pipeline.Paper{{ID: "1"}, {ID: "2"}}},
	}}
	f := newPipelineFixture(t, time.Minute, agent, searchAgent)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	agent.output = nil
	agent.err = errors.New("flaky backend")
	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	session := f.session(t)
	assert.Equal(t, entity.StepStatusCompleted, session.Memory.AgentProgress[entity.StepThesis],
		"completed progress never reverts")

	// SEARCH still sees a completed THESIS.
	res, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepSearch)
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)

	session = f.session(t)
	assert.Equal(t, 2, session.Memory.PaperCount)
}

func TestExecuteStepRejectsFileStep(t *testing.T) {
	f := newPipelineFixture(t, time.Minute)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepFile)
	assert.ErrorIs(t, err, ErrUnsupportedStep)
}

func TestExecuteStepUnknownSession(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.5)},
	)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, uuid.New(), entity.StepThesis)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExecuteStepForeignSessionLooksAbsent(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.5)},
	)

	_, err := f.service.ExecuteStep(context.Background(), uuid.New(), f.sessionId, entity.StepThesis)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExecuteStepRejectsConcurrentRun(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.5)},
	)

	acquired, err := f.guard.Acquire(context.Background(), f.sessionId, entity.StepThesis)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	assert.ErrorIs(t, err, ErrStepInFlight)

	// Released slot frees the pair again.
	require.NoError(t, f.guard.Release(context.Background(), f.sessionId, entity.StepThesis))
	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	assert.NoError(t, err)
}

func TestExecuteStepRollsBackOnSessionUpdateFailure(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.8, "kw")},
	)

	f.store.SessionUpdateErr = errors.New("connection reset")

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.Error(t, err)

	// Record and memory must move together or not at all.
	assert.Empty(t, f.records(t))
	session := f.session(t)
	assert.Equal(t, entity.StepStatusPending, session.Memory.AgentProgress[entity.StepThesis])
}

func TestStepStatusesBoard(t *testing.T) {
	f := newPipelineFixture(t, time.Minute,
		&stubAgent{step: entity.StepThesis, output: thesisOutput(0.8)},
	)

	board, err := f.service.StepStatuses(context.Background(), f.researcherId, f.sessionId)
	require.NoError(t, err)
	require.Len(t, board, len(pipeline.Steps))

	byStep := make(map[string]int)
	for i, row := range board {
		byStep[row.StepType] = i
		assert.Equal(t, "pending", row.Status)
	}

	assert.True(t, board[byStep["thesis"]].Eligible)
	assert.True(t, board[byStep["file"]].Eligible, "file is a free branch")
	assert.False(t, board[byStep["search"]].Eligible)
	assert.Equal(t, []string{"thesis"}, board[byStep["search"]].MissingDependencies)
	assert.Equal(t, []string{"hypothesis"}, board[byStep["map"]].MissingDependencies)

	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	board, err = f.service.StepStatuses(context.Background(), f.researcherId, f.sessionId)
	require.NoError(t, err)
	assert.Equal(t, "completed", board[byStep["thesis"]].Status)
	assert.True(t, board[byStep["search"]].Eligible)
}

func TestListRecordsNewestFirst(t *testing.T) {
	agent := &stubAgent{step: entity.StepThesis, output: thesisOutput(0.5, "a")}
	f := newPipelineFixture(t, time.Minute, agent)

	_, err := f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)
	agent.output = thesisOutput(0.6, "b")
	_, err = f.service.ExecuteStep(context.Background(), f.researcherId, f.sessionId, entity.StepThesis)
	require.NoError(t, err)

	records, err := f.service.ListRecords(context.Background(), f.researcherId, f.sessionId)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Greater(t, records[0].Id, records[1].Id)
}
