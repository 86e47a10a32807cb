package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/revelry-app/revelry/internal/account"
)

// RegisterIdentityRoutes wires the three identity entry points: phone+PIN
// registration and the two provider callbacks.
func RegisterIdentityRoutes(r fiber.Router, resolver *account.Resolver, logger *slog.Logger) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Username      string `json:"username"`
			DisplayName   string `json:"display_name"`
			Phone         string `json:"phone"`
			Email         string `json:"email"`
			PIN           string `json:"pin"`
			WalletAddress string `json:"wallet_address"`
			SocialID      string `json:"social_id"`
			PfpURL        string `json:"pfp_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		acct, err := resolver.RegisterWithPhone(c.UserContext(), account.Registration{
			Username:      req.Username,
			DisplayName:   req.DisplayName,
			Phone:         req.Phone,
			Email:         req.Email,
			PIN:           req.PIN,
			WalletAddress: req.WalletAddress,
			SocialID:      req.SocialID,
			PfpURL:        req.PfpURL,
		})
		if err != nil {
			if status := statusFromError(err); status != http.StatusInternalServerError {
				return fiber.NewError(status, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		logger.Info("identity.register completed",
			slog.String("account_id", acct.ID),
			slog.String("username", acct.Username),
			slog.Int("status", http.StatusCreated),
		)
		return c.Status(http.StatusCreated).JSON(accountPayload(acct))
	})

	// social provider callback: the provider has already authenticated the
	// caller, we only resolve the identifier it hands us
	r.Post("/identity/social/callback", func(c *fiber.Ctx) error {
		var req struct {
			SocialID      string `json:"social_id"`
			Username      string `json:"username"`
			Name          string `json:"name"`
			DisplayName   string `json:"display_name"`
			PfpURL        string `json:"pfp_url"`
			WalletAddress string `json:"wallet_address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.SocialID == "" {
			return fiber.NewError(http.StatusBadRequest, "social_id is required")
		}

		acct, err := resolver.Resolve(c.UserContext(), account.KindSocial, req.SocialID, account.Attributes{
			Username:      req.Username,
			Name:          req.Name,
			DisplayName:   req.DisplayName,
			PfpURL:        req.PfpURL,
			WalletAddress: req.WalletAddress,
		})
		if err != nil {
			return coreError(err)
		}

		if req.Username != "" {
			if _, err := resolver.LinkSocialAccount(c.UserContext(), acct.ID, req.SocialID, req.Username); err != nil {
				logger.Warn("social account link failed",
					slog.String("account_id", acct.ID),
					slog.Any("error", err),
				)
			}
		}
		return c.Status(http.StatusOK).JSON(accountPayload(acct))
	})

	r.Post("/identity/federated/callback", func(c *fiber.Ctx) error {
		var req struct {
			FederatedID   string `json:"federated_id"`
			Username      string `json:"username"`
			DisplayName   string `json:"display_name"`
			PfpURL        string `json:"pfp_url"`
			PublicAddress string `json:"public_address"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.FederatedID == "" {
			return fiber.NewError(http.StatusBadRequest, "federated_id is required")
		}

		acct, err := resolver.Resolve(c.UserContext(), account.KindFederated, req.FederatedID, account.Attributes{
			Username:      req.Username,
			Name:          req.DisplayName,
			DisplayName:   req.DisplayName,
			PfpURL:        req.PfpURL,
			WalletAddress: req.PublicAddress,
		})
		if err != nil {
			return coreError(err)
		}
		return c.Status(http.StatusOK).JSON(accountPayload(acct))
	})
}
