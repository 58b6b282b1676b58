// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"os"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory) IAuthService {
	return &authService{uowFactory: uowFactory}
}

// signAccessToken issues the HS256 token every authenticated route expects.
// The OAuth flow issues the same token shape.
func signAccessToken(researcherId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"researcher_id": researcherId.String(),
		"exp":           time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return token.SignedString([]byte(secret))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check for existing researcher
	existing, err := uow.ResearcherRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	// 3. Create researcher
	researcher := &entity.Researcher{
		Id:            uuid.New(),
		Email:         req.Email,
		PasswordHash:  &hashStr,
		FullName:      req.FullName,
		Affiliation:   req.Affiliation,
		ResearchFocus: req.ResearchFocus,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := uow.ResearcherRepository().Create(ctx, researcher); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{Id: researcher.Id}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Look up by email; a missing account reads the same as a bad
	// password
	researcher, err := uow.ResearcherRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if researcher == nil {
		return nil, ErrInvalidCredentials
	}

	// 2. ORCID-only accounts have no password to check
	if researcher.PasswordHash == nil {
		return nil, ErrOAuthOnlyAccount
	}

	// 3. Compare passwords
	if err := bcrypt.CompareHashAndPassword([]byte(*researcher.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 4. Generate JWT
	signedToken, err := signAccessToken(researcher.Id)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{AccessToken: signedToken}, nil
}
