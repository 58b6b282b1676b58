// FILE: internal/service/researcher_service.go
package service

import (
	"context"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IResearcherService interface {
	GetProfile(ctx context.Context, researcherId uuid.UUID) (*dto.ResearcherProfileResponse, error)
	UpdateProfile(ctx context.Context, researcherId uuid.UUID, req *dto.UpdateProfileRequest) error
}

type researcherService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewResearcherService(uowFactory unitofwork.RepositoryFactory) IResearcherService {
	return &researcherService{uowFactory: uowFactory}
}

func (s *researcherService) GetProfile(ctx context.Context, researcherId uuid.UUID) (*dto.ResearcherProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	researcher, err := uow.ResearcherRepository().FindOne(ctx, specification.ByID{ID: researcherId})
	if err != nil {
		return nil, err
	}
	if researcher == nil {
		return nil, ErrResearcherNotFound
	}

	return &dto.ResearcherProfileResponse{
		Id:            researcher.Id,
		Email:         researcher.Email,
		FullName:      researcher.FullName,
		Affiliation:   researcher.Affiliation,
		ResearchFocus: researcher.ResearchFocus,
		OrcidID:       researcher.OrcidID,
		CreatedAt:     researcher.CreatedAt,
	}, nil
}

func (s *researcherService) UpdateProfile(ctx context.Context, researcherId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	repo := uow.ResearcherRepository()
	researcher, err := repo.FindOne(ctx, specification.ByID{ID: researcherId})
	if err != nil {
		return err
	}
	if researcher == nil {
		return ErrResearcherNotFound
	}

	researcher.FullName = req.FullName
	researcher.Affiliation = req.Affiliation
	researcher.ResearchFocus = req.ResearchFocus
	if req.OrcidID != nil {
		researcher.OrcidID = req.OrcidID
	}
	researcher.UpdatedAt = time.Now()

	return repo.Update(ctx, researcher)
}
