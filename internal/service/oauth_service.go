// FILE: internal/service/oauth_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/entity"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// orcidEndpoint is not shipped with the oauth2 package, so it is spelled
// out here. The /authenticate scope returns the iD and name inside the
// token response itself, no extra API call needed.
var orcidEndpoint = oauth2.Endpoint{
	AuthURL:  "https://orcid.org/oauth/authorize",
	TokenURL: "https://orcid.org/oauth/token",
}

type IOAuthService interface {
	GetLoginURL() (*dto.OrcidLoginResponse, error)
	HandleCallback(ctx context.Context, code string) (*dto.OrcidCallbackResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	orcidConf  *oauth2.Config
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     os.Getenv("ORCID_CLIENT_ID"),
		ClientSecret: os.Getenv("ORCID_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("ORCID_REDIRECT_URL"),
		Scopes:       []string{"/authenticate"},
		Endpoint:     orcidEndpoint,
	}

	log.Printf("[OAuth Service] Initialized ORCID client")
	log.Printf("  - Redirect URL: %s", conf.RedirectURL)

	return &oauthService{
		uowFactory: uowFactory,
		orcidConf:  conf,
	}
}

func (s *oauthService) GetLoginURL() (*dto.OrcidLoginResponse, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	state := base64.URLEncoding.EncodeToString(b)

	url := s.orcidConf.AuthCodeURL(state)
	log.Printf("[OAuth Service] Generated ORCID login URL with state: %s", state)

	return &dto.OrcidLoginResponse{URL: url}, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, code string) (*dto.OrcidCallbackResponse, error) {
	log.Printf("[OAuth Service] Starting ORCID callback handling...")

	// Exchange code for token
	token, err := s.orcidConf.Exchange(ctx, code)
	if err != nil {
		log.Printf("[OAuth Service] ERROR - Code exchange failed: %v", err)
		return nil, fmt.Errorf("code exchange failed: %v", err)
	}
	log.Printf("[OAuth Service] ✅ Successfully exchanged code for access token")

	orcidID, _ := token.Extra("orcid").(string)
	if orcidID == "" {
		log.Printf("[OAuth Service] ERROR - Token response carried no ORCID iD")
		return nil, fmt.Errorf("orcid id missing from token response")
	}
	name, _ := token.Extra("name").(string)
	if name == "" {
		name = orcidID
	}

	log.Printf("[OAuth Service] ✅ Received ORCID identity:")
	log.Printf("  - ORCID iD: %s", orcidID)
	log.Printf("  - Name: %s", name)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	researcher, err := uow.ResearcherRepository().FindOne(ctx, specification.ByOrcid{OrcidID: orcidID})
	if err != nil {
		log.Printf("[OAuth Service] ERROR - Database query failed: %v", err)
		return nil, err
	}

	isNewUser := false
	if researcher == nil {
		// ORCID does not release the email under /authenticate, so new
		// accounts get a stable placeholder derived from the iD.
		log.Printf("[OAuth Service] Researcher not found. Creating new account...")
		researcher = &entity.Researcher{
			Id:           uuid.New(),
			Email:        fmt.Sprintf("%s@orcid.org", orcidID),
			PasswordHash: nil,
			FullName:     name,
			OrcidID:      &orcidID,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := uow.ResearcherRepository().Create(ctx, researcher); err != nil {
			log.Printf("[OAuth Service] ERROR - Failed to create researcher: %v", err)
			return nil, err
		}
		isNewUser = true
		log.Printf("[OAuth Service] ✅ New researcher created with ID: %s", researcher.Id)
	} else {
		log.Printf("[OAuth Service] ✅ Existing researcher found with ID: %s", researcher.Id)
	}

	signedToken, err := signAccessToken(researcher.Id)
	if err != nil {
		log.Printf("[OAuth Service] ERROR - Failed to sign JWT: %v", err)
		return nil, err
	}

	return &dto.OrcidCallbackResponse{
		AccessToken: signedToken,
		OrcidID:     orcidID,
		IsNewUser:   isNewUser,
	}, nil
}
