package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/revelry-app/revelry/internal/auth"
)

// RegisterAuthRoutes wires the login endpoint behind the per-phone rate limiter.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
