// FILE: internal/controller/researcher_controller.go
package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IResearcherController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
}

type researcherController struct {
	service service.IResearcherService
}

func NewResearcherController(service service.IResearcherService) IResearcherController {
	return &researcherController{service: service}
}

func (c *researcherController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/researcher/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/profile", c.GetProfile)
	h.Put("/profile", c.UpdateProfile)
}

func (c *researcherController) GetProfile(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	res, err := c.service.GetProfile(ctx.Context(), researcherId)
	if err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *researcherController) UpdateProfile(ctx *fiber.Ctx) error {
	researcherIdStr := ctx.Locals("researcher_id").(string)
	researcherId, _ := uuid.Parse(researcherIdStr)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpdateProfile(ctx.Context(), researcherId, &req); err != nil {
		return mapDomainError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update profile", nil))
}
