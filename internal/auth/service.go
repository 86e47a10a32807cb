package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/revelry-app/revelry/internal/account"
)

var (
	// ErrInvalidPIN is the normal wrong-credential outcome; it has already
	// been counted against the account by the time it is returned.
	ErrInvalidPIN = errors.New("invalid pin")

	// ErrAccountDisabled covers inactive and banned accounts.
	ErrAccountDisabled = errors.New("account is not active")
)

// Service runs the phone+PIN login flow, feeding verification outcomes
// into the lockout controller. It issues no sessions or tokens; callers
// own that layer.
type Service struct {
	store   account.Store
	lockout *account.Lockout
	logger  *slog.Logger
}

// NewService builds the login service.
func NewService(store account.Store, lockout *account.Lockout, logger *slog.Logger) *Service {
	return &Service{store: store, lockout: lockout, logger: logger}
}

// Login verifies a phone+PIN pair. A wrong PIN increments the
// failed-attempt counter and may lock the account; a correct PIN resets it.
func (s *Service) Login(ctx context.Context, phone, pin string) (account.Account, error) {
	acct, err := s.store.FindByPhone(ctx, phone)
	if err != nil {
		return account.Account{}, err
	}

	if !acct.IsActive() {
		return account.Account{}, ErrAccountDisabled
	}
	if acct.IsLocked() {
		return account.Account{}, account.ErrLocked
	}

	ok, err := s.lockout.VerifyPIN(acct, pin)
	if err != nil {
		return account.Account{}, err
	}
	if !ok {
		updated, transitioned, err := s.lockout.IncrementFailedAttempts(ctx, acct.ID)
		if err != nil {
			return account.Account{}, err
		}
		if transitioned {
			s.logger.Warn("account locked after repeated pin failures",
				slog.String("account_id", updated.ID),
				slog.Int("failed_attempts", updated.FailedAttempts),
			)
			return account.Account{}, account.ErrLocked
		}
		return account.Account{}, ErrInvalidPIN
	}

	if acct.FailedAttempts > 0 {
		acct, err = s.lockout.ResetFailedAttempts(ctx, acct.ID)
		if err != nil {
			return account.Account{}, err
		}
	}
	return acct, nil
}
