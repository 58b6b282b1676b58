package service

import (
	"context"
	"testing"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*memory.Store, IAuthService) {
	t.Helper()
	store := memory.NewStore()
	return store, NewAuthService(memory.NewFactory(store))
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "marie@example.com",
		Password: "radium-1898",
		FullName: "Marie S.",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, reg.Id)

	res, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "marie@example.com",
		Password: "radium-1898",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	// The token carries the researcher id every protected route reads.
	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, reg.Id.String(), claims["researcher_id"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "dup@example.com", Password: "first-password", FullName: "First",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Email: "dup@example.com", Password: "second-password", FullName: "Second",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "marie@example.com", Password: "correct-password", FullName: "Marie",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "marie@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailReadsLikeBadPassword(t *testing.T) {
	_, svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginOrcidOnlyAccount(t *testing.T) {
	store, svc := newAuthFixture(t)
	ctx := context.Background()

	orcid := "0000-0002-1825-0097"
	researcher := entity.Researcher{
		Id: uuid.New(), Email: "orcid@example.com", FullName: "ORCID Person",
		OrcidID: &orcid, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, memory.NewFactory(store).NewUnitOfWork(ctx).ResearcherRepository().Create(ctx, &researcher))

	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "orcid@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrOAuthOnlyAccount)
}
