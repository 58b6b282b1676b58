// FILE: internal/controller/errors.go
package controller

import (
	"errors"

	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapDomainError translates service errors into the HTTP statuses the error
// handler middleware renders. Unknown errors pass through as 500s.
func mapDomainError(err error) error {
	var depErr *service.DependencyUnmetError

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrResearcherNotFound),
		errors.Is(err, service.ErrFileNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())

	case errors.As(err, &depErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrStepInFlight),
		errors.Is(err, service.ErrEmailTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrUnsupportedStep),
		errors.Is(err, service.ErrInvalidImport):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrFileTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, service.ErrUnsupportedFileType):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOAuthOnlyAccount):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	return err
}
