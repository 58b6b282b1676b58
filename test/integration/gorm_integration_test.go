package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ResearcherRepository())
	assert.NotNil(t, uow.ResearchSessionRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Session Repository", func(t *testing.T) {
		count, err := uow.ResearchSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Session count: %d", count)
	})

	t.Run("Check Step Record Repository", func(t *testing.T) {
		// Count implies table check
		count, err := uow.StepRecordRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("StepRecord count: %d", count)
	})

	t.Run("Check Transactional Session With Record", func(t *testing.T) {
		// A step record needs a session, and a session needs a researcher.
		researcherId := uuid.New()
		researcher := &entity.Researcher{
			Id:       researcherId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test Researcher",
		}

		err := uow.ResearcherRepository().Create(context.Background(), researcher)
		assert.NoError(t, err)

		// Transaction Test
		ctx := context.Background()
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &entity.Session{
			Id:           sessionId,
			ResearcherId: researcherId,
			Title:        "Integration Session",
			Question:     "Does the transactional write land atomically?",
			Memory:       entity.SharedMemory{Keywords: []string{}, Variables: map[string]string{}, AgentProgress: map[entity.StepType]entity.StepStatus{}},
		}

		err = uow.ResearchSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		record := &entity.StepRecord{
			SessionId:  sessionId,
			StepType:   entity.StepThesis,
			Result:     "integration thesis result",
			Confidence: 80,
			Status:     entity.StepStatusCompleted,
		}

		err = uow.StepRecordRepository().Create(ctx, record)
		assert.NoError(t, err)
		assert.NotZero(t, record.Id, "insert should backfill the serial id")

		err = uow.Commit()
		assert.NoError(t, err)

		t.Log("Successfully created Session with StepRecord in Transaction")

		// Feedback is the only mutable column on a record.
		err = uow.StepRecordRepository().UpdateFeedback(ctx, record.Id, entity.FeedbackAccepted)
		assert.NoError(t, err)

		got, err := uow.StepRecordRepository().FindOne(ctx, specification.ByRecordID{ID: record.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, got) {
			assert.Equal(t, entity.FeedbackAccepted, got.UserFeedback)
			assert.Equal(t, "integration thesis result", got.Result)
		}

		// Cleanup: records first, then the session row.
		err = uow.StepRecordRepository().DeleteBySessionId(ctx, sessionId)
		assert.NoError(t, err)
		err = uow.ResearchSessionRepository().Delete(ctx, sessionId)
		assert.NoError(t, err)
	})
}
