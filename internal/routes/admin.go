package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/revelry-app/revelry/internal/account"
)

// RegisterAdminRoutes wires the administrative account operations. Access
// control sits in the gateway in front of this service.
func RegisterAdminRoutes(r fiber.Router, resolver *account.Resolver, lockout *account.Lockout, logger *slog.Logger) {
	admin := r.Group("/admin")

	admin.Post("/accounts/:id/lock", func(c *fiber.Ctx) error {
		acct, err := lockout.Lock(c.UserContext(), c.Params("id"))
		if err != nil {
			return coreError(err)
		}
		logger.Info("account locked by admin", slog.String("account_id", acct.ID))
		return c.JSON(accountPayload(acct))
	})

	admin.Post("/accounts/:id/unlock", func(c *fiber.Ctx) error {
		acct, err := lockout.Unlock(c.UserContext(), c.Params("id"))
		if err != nil {
			return coreError(err)
		}
		logger.Info("account unlocked by admin", slog.String("account_id", acct.ID))
		return c.JSON(accountPayload(acct))
	})

	admin.Put("/accounts/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		status := account.Status(req.Status)
		if !status.Valid() {
			return fiber.NewError(http.StatusBadRequest, "status must be one of active, inactive, banned")
		}
		acct, err := resolver.SetStatus(c.UserContext(), c.Params("id"), status)
		if err != nil {
			return coreError(err)
		}
		logger.Info("account status changed",
			slog.String("account_id", acct.ID),
			slog.String("status", req.Status),
		)
		return c.JSON(accountPayload(acct))
	})

	admin.Put("/accounts/:id/role", func(c *fiber.Ctx) error {
		var req struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		role := account.Role(req.Role)
		if !role.Valid() {
			return fiber.NewError(http.StatusBadRequest, "role must be one of user, organizer, admin")
		}
		acct, err := resolver.SetRole(c.UserContext(), c.Params("id"), role)
		if err != nil {
			return coreError(err)
		}
		logger.Info("account role changed",
			slog.String("account_id", acct.ID),
			slog.String("role", req.Role),
		)
		return c.JSON(accountPayload(acct))
	})
}
