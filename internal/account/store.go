package account

import (
	"context"
	"time"
)

// Patch is a partial account update. Nil fields are left untouched, so a
// caller can never null out a value by omission; clearing the lock
// timestamp is an explicit flag because nil already means "unchanged".
type Patch struct {
	SocialID       *string
	FederatedID    *string
	Phone          *string
	Email          *string
	Username       *string
	Name           *string
	PfpURL         *string
	DisplayName    *string
	ProfilePicture *string
	WalletAddress  *string
	PINHash        []byte
	FailedAttempts *int
	LockedAt       *time.Time
	ClearLock      bool
	Status         *Status
	Role           *Role
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.SocialID == nil && p.FederatedID == nil && p.Phone == nil &&
		p.Email == nil && p.Username == nil && p.Name == nil &&
		p.PfpURL == nil && p.DisplayName == nil && p.ProfilePicture == nil &&
		p.WalletAddress == nil && p.PINHash == nil &&
		p.FailedAttempts == nil && p.LockedAt == nil && !p.ClearLock &&
		p.Status == nil && p.Role == nil
}

func (p Patch) apply(a Account, now time.Time) Account {
	if p.SocialID != nil {
		a.SocialID = *p.SocialID
	}
	if p.FederatedID != nil {
		a.FederatedID = *p.FederatedID
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Username != nil {
		a.Username = *p.Username
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.PfpURL != nil {
		a.PfpURL = *p.PfpURL
	}
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
	}
	if p.ProfilePicture != nil {
		a.ProfilePicture = *p.ProfilePicture
	}
	if p.WalletAddress != nil {
		a.WalletAddress = *p.WalletAddress
	}
	if p.PINHash != nil {
		a.PINHash = p.PINHash
	}
	if p.FailedAttempts != nil {
		a.FailedAttempts = *p.FailedAttempts
	}
	if p.LockedAt != nil {
		t := *p.LockedAt
		a.LockedAt = &t
	} else if p.ClearLock {
		a.LockedAt = nil
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	a.UpdatedAt = now
	return a
}

// Store is the persistence seam the resolver and lockout controller depend
// on. It performs no business logic. Lookups return ErrNotFound for zero
// matches; Create and Update return ErrConflict on uniqueness violations.
type Store interface {
	FindByID(ctx context.Context, id string) (Account, error)
	FindByPhone(ctx context.Context, phone string) (Account, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (Account, error)
	FindByWalletAddress(ctx context.Context, address string) (Account, error)
	FindBySocialID(ctx context.Context, socialID string) (Account, error)
	FindByFederatedID(ctx context.Context, federatedID string) (Account, error)

	Create(ctx context.Context, acct Account) error
	// Update applies only the fields present in patch and always touches
	// UpdatedAt, returning the resulting account.
	Update(ctx context.Context, id string, patch Patch) (Account, error)
	Count(ctx context.Context) (int64, error)

	UpsertSocialAccount(ctx context.Context, accountID, socialID, username string) (SocialAccount, error)
	FindSocialAccountBySocialID(ctx context.Context, socialID string) (SocialAccount, error)
}
