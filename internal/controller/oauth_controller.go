// FILE: internal/controller/oauth_controller.go
package controller

import (
	"fmt"
	"log"
	"os"

	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service service.IOAuthService
}

func NewOAuthController(service service.IOAuthService) IOAuthController {
	return &oauthController{service: service}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/oauth/orcid")
	h.Get("/login", c.Login)
	h.Get("/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	log.Printf("[OAuth] ORCID login initiated")

	res, err := c.service.GetLoginURL()
	if err != nil {
		log.Printf("[OAuth] ERROR - Failed to get login URL: %v", err)
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	log.Printf("[OAuth] Redirecting researcher to: %s", res.URL)
	// Redirect researcher to ORCID
	return ctx.Redirect(res.URL)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")

	if code == "" {
		log.Printf("[OAuth] ERROR - Missing authorization code")
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}
	log.Printf("[OAuth] Callback received, code: %s", code[:4]+"...")

	res, err := c.service.HandleCallback(ctx.Context(), code)
	if err != nil {
		log.Printf("[OAuth] ERROR - HandleCallback failed: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	log.Printf("[OAuth] ✅ Researcher authenticated successfully")
	log.Printf("[OAuth] ORCID iD: %s (new account: %v)", res.OrcidID, res.IsNewUser)

	// ✅ SUCCESS: Redirect to Frontend with Token in URL
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173" // fallback default
		log.Printf("[OAuth] WARNING - FRONTEND_URL not set in .env, using default: %s", frontendURL)
	}

	redirectURL := fmt.Sprintf("%s/app?token=%s", frontendURL, res.AccessToken)
	log.Printf("[OAuth] Redirecting to Frontend: %s", frontendURL+"/app?token=***")

	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
