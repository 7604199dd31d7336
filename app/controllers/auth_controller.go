package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/models"
)

type SignupRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountStore is what signup and login need from the user repository.
type AccountStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID uint) (string, time.Time, error)
}

type AuthController struct {
	users  AccountStore
	tokens TokenIssuer
}

func NewAuthController(users AccountStore, tokens TokenIssuer) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

func (h *AuthController) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.users.GetByEmail(ctx, email); err == nil {
		return respondError(c, fiber.StatusBadRequest, "bad_request", "Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fiberlog.Errorf("[Auth] Email lookup failed: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create account")
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	user, err := models.CreateUser(email, req.Password, name)
	if err != nil {
		return respondValidation(c, []FieldError{{Field: "email", Message: "value is not a valid email address"}})
	}
	if err := h.users.Create(ctx, user); err != nil {
		// lost a race against a concurrent signup for the same address
		if _, lookupErr := h.users.GetByEmail(ctx, email); lookupErr == nil {
			return respondError(c, fiber.StatusBadRequest, "bad_request", "Email already registered")
		}
		fiberlog.Errorf("[Auth] Failed to create user: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create account")
	}

	fiberlog.Infof("[Auth] New user %d registered", user.ID)
	return h.respondToken(c, fiber.StatusCreated, user.ID)
}

func (h *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.users.GetByEmail(c.UserContext(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		fiberlog.Errorf("[Auth] Email lookup failed: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	if user == nil || err != nil || !user.CheckPassword(req.Password) {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return respondError(c, fiber.StatusUnauthorized, "unauthorized", "Incorrect email or password")
	}
	if !user.IsActive {
		return respondError(c, fiber.StatusForbidden, "forbidden", "Inactive user")
	}

	return h.respondToken(c, fiber.StatusOK, user.ID)
}

func (h *AuthController) respondToken(c *fiber.Ctx, status int, userID uint) error {
	token, expiresAt, err := h.tokens.Issue(userID)
	if err != nil {
		fiberlog.Errorf("[Auth] Failed to sign token for user %d: %v", userID, err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to issue token")
	}
	return c.Status(status).JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int64(time.Until(expiresAt).Seconds()),
	})
}
