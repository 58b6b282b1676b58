// FILE: internal/controller/pipeline_controller.go
package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"
	"ai-research-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	ExecuteStep(ctx *fiber.Ctx) error
	StepStatuses(ctx *fiber.Ctx) error
	ListRecords(ctx *fiber.Ctx) error
	SetFeedback(ctx *fiber.Ctx) error
}

type pipelineController struct {
	pipelineService service.IPipelineService
	feedbackService service.IFeedbackService
}

func NewPipelineController(pipelineService service.IPipelineService, feedbackService service.IFeedbackService) IPipelineController {
	return &pipelineController{
		pipelineService: pipelineService,
		feedbackService: feedbackService,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Use(serverutils.JwtMiddleware) // ✅ PROTECTED: Wajib login
	h.Post("sessions/:id/steps/:step/execute", c.ExecuteStep)
	h.Get("sessions/:id/steps", c.StepStatuses)
	h.Get("sessions/:id/records", c.ListRecords)
	h.Patch("records/:recordId/feedback", c.SetFeedback)
}

func (c *pipelineController) ExecuteStep(ctx *fiber.Ctx) error {
	// 1. Ambil Researcher ID dari Token
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	step, err := pipeline.ParseStepType(ctx.Params("step"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// 2. Kirim researcherId ke Service
	res, err := c.pipelineService.ExecuteStep(ctx.Context(), researcherId, sessionId, step)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute step", res))
}

func (c *pipelineController) StepStatuses(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.pipelineService.StepStatuses(ctx.Context(), researcherId, sessionId)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get step statuses", res))
}

func (c *pipelineController) ListRecords(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.pipelineService.ListRecords(ctx.Context(), researcherId, sessionId)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list step records", res))
}

func (c *pipelineController) SetFeedback(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	recordId, err := ctx.ParamsInt("recordId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.RecordId = int64(recordId)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.feedbackService.SetFeedback(ctx.Context(), researcherId, req.RecordId, req.Decision)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set feedback", res))
}
