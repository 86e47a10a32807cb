package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/revelry-app/revelry/internal/account"
)

// Handler exposes the login endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// Login verifies a phone+PIN pair and returns the resolved account.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Phone == "" || req.PIN == "" {
		return fiber.NewError(http.StatusBadRequest, "phone and pin are required")
	}

	acct, err := h.service.Login(c.UserContext(), req.Phone, req.PIN)
	switch {
	case err == nil:
		return c.Status(http.StatusOK).JSON(accountResponse(acct))
	case errors.Is(err, account.ErrLocked):
		return fiber.NewError(http.StatusLocked, "account locked, contact support")
	case errors.Is(err, account.ErrNoPIN):
		return fiber.NewError(http.StatusConflict, "no pin set for this account")
	case errors.Is(err, ErrAccountDisabled):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidPIN), errors.Is(err, account.ErrNotFound):
		// same response either way, so callers cannot probe for registered phones
		return fiber.NewError(http.StatusUnauthorized, "invalid phone or pin")
	default:
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}
}

func accountResponse(a account.Account) fiber.Map {
	status := a.Status
	if status == "" {
		status = account.StatusActive
	}
	return fiber.Map{
		"account_id":   a.ID,
		"phone":        a.Phone,
		"username":     a.Username,
		"display_name": a.DisplayName,
		"role":         a.Role,
		"status":       status,
	}
}
