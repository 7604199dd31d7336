package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/AdEngine/internal/pkg/generation"
	"github.com/ManuelReschke/AdEngine/internal/pkg/usercontext"
)

// GenerateRequest is the body of POST /api/v1/generate.
type GenerateRequest struct {
	URL         string   `json:"url" validate:"required"`
	ProductName string   `json:"product_name" validate:"required"`
	ValueProps  []string `json:"value_props" validate:"required,min=1,dive,required"`
	BrandVoice  string   `json:"brand_voice" validate:"required"`
}

// GenerationRunner runs one generation for an authenticated user.
type GenerationRunner interface {
	Run(ctx context.Context, in generation.Input) (*generation.Result, error)
}

type GenerateController struct {
	workflow GenerationRunner
}

func NewGenerateController(workflow GenerationRunner) *GenerateController {
	return &GenerateController{workflow: workflow}
}

// HandleGenerate checks the quota, generates variations and records usage.
func (h *GenerateController) HandleGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return respondError(c, fiber.StatusUnauthorized, "unauthorized", "Not authenticated")
	}

	var req GenerateRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}

	res, err := h.workflow.Run(c.UserContext(), generation.Input{
		UserID:      userCtx.UserID,
		IsPro:       userCtx.IsPro,
		URL:         strings.TrimSpace(req.URL),
		ProductName: req.ProductName,
		ValueProps:  req.ValueProps,
		BrandVoice:  req.BrandVoice,
	})
	if err != nil {
		var quotaErr *generation.QuotaExceededError
		if errors.As(err, &quotaErr) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error":   "quota_exceeded",
				"message": quotaErr.Error(),
				"limit":   quotaErr.Limit,
			})
		}
		if errors.Is(err, generation.ErrGenerationFailed) {
			return respondError(c, fiber.StatusInternalServerError, "generation_failed", err.Error())
		}
		fiberlog.Errorf("[Generate] Request for user %d failed: %v", userCtx.UserID, err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to process generation request")
	}

	return c.JSON(res)
}
