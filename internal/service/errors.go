// FILE: internal/service/errors.go
package service

import (
	"errors"
	"fmt"
	"strings"

	"ai-research-be/internal/entity"
)

// Sentinel errors the controllers translate into HTTP statuses.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrRecordNotFound     = errors.New("step record not found")
	ErrResearcherNotFound = errors.New("researcher not found")
	ErrFileNotFound       = errors.New("uploaded file not found")

	// ErrUnsupportedStep marks steps that never run through ExecuteStep;
	// file analysis has its own ingestion entry point.
	ErrUnsupportedStep = errors.New("step cannot be executed directly")

	// ErrStepInFlight signals a concurrent execution of the same step on
	// the same session.
	ErrStepInFlight = errors.New("step is already running for this session")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOAuthOnlyAccount   = errors.New("account registered via ORCID; use the ORCID login")

	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidImport wraps the specific reason an export document was
	// rejected.
	ErrInvalidImport = errors.New("invalid session export document")
)

// DependencyUnmetError reports which prerequisites block a step. It wraps
// nothing; callers detect it with errors.As.
type DependencyUnmetError struct {
	Step    entity.StepType
	Missing []entity.StepType
}

func (e *DependencyUnmetError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return fmt.Sprintf("step %s requires completed steps: %s", e.Step, strings.Join(names, ", "))
}
