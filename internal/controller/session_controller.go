// FILE: internal/controller/session_controller.go
package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Statistics(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Import(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware) // ✅ PROTECTED: Wajib login
	h.Post("import", c.Import)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/statistics", c.Statistics)
	h.Get(":id/export", c.Export)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	// 1. Ambil Researcher ID dari Token
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// 2. Kirim researcherId ke Service
	res, err := c.sessionService.Create(ctx.Context(), researcherId, &req)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	res, err := c.sessionService.List(ctx.Context(), researcherId, ctx.Query("q"))
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.sessionService.Show(ctx.Context(), researcherId, id)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Update(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	var req dto.UpdateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Update(ctx.Context(), researcherId, &req)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update session", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.sessionService.Delete(ctx.Context(), researcherId, id); err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *sessionController) Statistics(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.sessionService.Statistics(ctx.Context(), researcherId, id)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session statistics", res))
}

func (c *sessionController) Export(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.sessionService.Export(ctx.Context(), researcherId, id)
	if err != nil {
		return mapDomainError(err)
	}

	// The export document is the payload itself so it can be saved as a
	// file and fed back to import unchanged.
	return ctx.JSON(res)
}

func (c *sessionController) Import(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	var doc dto.SessionExportDocument
	if err := ctx.BodyParser(&doc); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(doc.Session); err != nil {
		return err
	}

	res, err := c.sessionService.Import(ctx.Context(), researcherId, &doc)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success import session", res))
}
