package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/ratelimit"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// AccountsHandler manages registration and login endpoints.
type AccountsHandler struct {
	service *service.AuthService
	limiter ratelimit.Limiter
	logger  *zap.Logger
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(authService *service.AuthService, limiter ratelimit.Limiter, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{service: authService, limiter: limiter, logger: logger}
}

// RegisterClient POST /auth/clients/register.
func (h *AccountsHandler) RegisterClient(c *fiber.Ctx) error {
	var req dto.ClientRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	_, token, exp, err := h.service.RegisterClient(c.UserContext(), req.Name, req.Email, req.Company, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}

// LoginClient POST /auth/clients/login.
func (h *AccountsHandler) LoginClient(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if err := h.checkRate(c, "client", req.Email); err != nil {
		return err
	}

	_, token, exp, err := h.service.LoginClient(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}

// LoginOperator POST /auth/operators/login.
func (h *AccountsHandler) LoginOperator(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if err := h.checkRate(c, "operator", req.Email); err != nil {
		return err
	}

	_, token, exp, err := h.service.LoginOperator(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: exp}})
}

// checkRate throttles login attempts per email+ip. The limiter failing
// (redis down) allows the attempt and logs rather than blocking logins.
func (h *AccountsHandler) checkRate(c *fiber.Ctx, kind, email string) error {
	if h.limiter == nil {
		return nil
	}
	key := "login:" + kind + ":" + strings.ToLower(strings.TrimSpace(email)) + ":" + c.IP()
	allowed, err := h.limiter.Allow(c.UserContext(), key)
	if err != nil {
		h.logger.Warn("rate limiter unavailable; allowing login attempt", zap.Error(err))
		return nil
	}
	if !allowed {
		return errorutil.NewTooManyRequests("too many login attempts; try again later")
	}
	return nil
}
