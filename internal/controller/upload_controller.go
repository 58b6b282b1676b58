// FILE: internal/controller/upload_controller.go
package controller

import (
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	ListFiles(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
}

func NewUploadController(uploadService service.IUploadService) IUploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions/:id/files", c.Upload)
	h.Get("sessions/:id/files", c.ListFiles)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	// 1. Ambil Researcher ID dari Token
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing 'file' form field")
	}

	// 2. Kirim researcherId ke Service
	res, err := c.uploadService.Ingest(ctx.Context(), researcherId, sessionId, fileHeader)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload file", res))
}

func (c *uploadController) ListFiles(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.uploadService.ListFiles(ctx.Context(), researcherId, sessionId)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list files", res))
}
