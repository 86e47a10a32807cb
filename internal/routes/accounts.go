package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revelry-app/revelry/internal/account"
)

// accountPayload is the wire shape of an account across all endpoints.
// The PIN hash never leaves the service; only its presence does.
func accountPayload(a account.Account) fiber.Map {
	status := a.Status
	if status == "" {
		status = account.StatusActive
	}
	var lockedAt *string
	if a.LockedAt != nil {
		v := a.LockedAt.UTC().Format(time.RFC3339Nano)
		lockedAt = &v
	}
	return fiber.Map{
		"account_id":      a.ID,
		"social_id":       a.SocialID,
		"federated_id":    a.FederatedID,
		"phone":           a.Phone,
		"email":           a.Email,
		"username":        a.Username,
		"name":            a.Name,
		"pfp_url":         a.PfpURL,
		"display_name":    a.DisplayName,
		"profile_picture": a.ProfilePicture,
		"wallet_address":  a.WalletAddress,
		"has_pin":         a.HasPIN(),
		"failed_attempts": a.FailedAttempts,
		"locked_at":       lockedAt,
		"locked":          a.IsLocked(),
		"status":          status,
		"role":            a.Role,
		"created_at":      a.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":      a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// RegisterAccountRoutes wires account fetch, profile edits, wallet linking
// and the PIN lifecycle.
func RegisterAccountRoutes(r fiber.Router, resolver *account.Resolver, lockout *account.Lockout) {
	r.Get("/accounts/:id", func(c *fiber.Ctx) error {
		acct, err := resolver.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return coreError(err)
		}
		return c.JSON(accountPayload(acct))
	})

	r.Patch("/accounts/:id/profile", func(c *fiber.Ctx) error {
		var req struct {
			DisplayName    *string `json:"display_name"`
			ProfilePicture *string `json:"profile_picture"`
			Phone          *string `json:"phone"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := resolver.UpdateProfile(c.UserContext(), c.Params("id"), account.ProfileUpdate{
			DisplayName:    req.DisplayName,
			ProfilePicture: req.ProfilePicture,
			Phone:          req.Phone,
		})
		if err != nil {
			return coreError(err)
		}
		return c.JSON(accountPayload(acct))
	})

	r.Put("/accounts/:id/wallet", func(c *fiber.Ctx) error {
		var req struct {
			WalletAddress string `json:"wallet_address"`
			SocialID      string `json:"social_id"`
			Username      string `json:"username"`
			Name          string `json:"name"`
			PfpURL        string `json:"pfp_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.WalletAddress == "" {
			return fiber.NewError(http.StatusBadRequest, "wallet_address is required")
		}
		acct, err := resolver.LinkWallet(c.UserContext(), c.Params("id"), req.WalletAddress, account.Attributes{
			SocialID: req.SocialID,
			Username: req.Username,
			Name:     req.Name,
			PfpURL:   req.PfpURL,
		})
		if err != nil {
			return coreError(err)
		}
		return c.JSON(accountPayload(acct))
	})

	// set a first PIN
	r.Post("/accounts/:id/pin", func(c *fiber.Ctx) error {
		var req struct {
			PIN string `json:"pin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := resolver.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return coreError(err)
		}
		if acct.HasPIN() {
			return fiber.NewError(http.StatusConflict, "pin already set, use change instead")
		}
		updated, err := lockout.SetPIN(c.UserContext(), acct.ID, req.PIN)
		if err != nil {
			if status := statusFromError(err); status != http.StatusInternalServerError {
				return fiber.NewError(status, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(accountPayload(updated))
	})

	// change PIN: the current one is verified right here, before ChangePIN
	r.Put("/accounts/:id/pin", func(c *fiber.Ctx) error {
		var req struct {
			CurrentPIN string `json:"current_pin"`
			NewPIN     string `json:"new_pin"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		acct, err := resolver.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return coreError(err)
		}
		if acct.IsLocked() {
			return fiber.NewError(http.StatusLocked, "account locked, contact support")
		}
		ok, err := lockout.VerifyPIN(acct, req.CurrentPIN)
		if err != nil {
			return coreError(err)
		}
		if !ok {
			_, transitioned, err := lockout.IncrementFailedAttempts(c.UserContext(), acct.ID)
			if err != nil {
				return coreError(err)
			}
			if transitioned {
				return fiber.NewError(http.StatusLocked, "account locked, contact support")
			}
			return fiber.NewError(http.StatusUnauthorized, "current pin is incorrect")
		}
		updated, err := lockout.ChangePIN(c.UserContext(), acct.ID, req.NewPIN)
		if err != nil {
			if status := statusFromError(err); status != http.StatusInternalServerError {
				return fiber.NewError(status, err.Error())
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(accountPayload(updated))
	})
}
