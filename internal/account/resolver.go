package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Kind names the identity channel a resolve request arrives on.
type Kind string

const (
	KindPhone     Kind = "phone"
	KindSocial    Kind = "social"
	KindFederated Kind = "federated"
)

// Attributes carries the optional profile data a provider supplies
// alongside an identifier. Empty fields are treated as not supplied and
// never overwrite stored values.
type Attributes struct {
	Username      string
	Name          string
	DisplayName   string
	PfpURL        string
	WalletAddress string
	Email         string
	Phone         string
	SocialID      string
	FederatedID   string
}

func (a Attributes) patch() Patch {
	var p Patch
	if a.Username != "" {
		p.Username = &a.Username
	}
	if a.Name != "" {
		p.Name = &a.Name
	}
	if a.DisplayName != "" {
		p.DisplayName = &a.DisplayName
	}
	if a.PfpURL != "" {
		p.PfpURL = &a.PfpURL
	}
	if a.WalletAddress != "" {
		p.WalletAddress = &a.WalletAddress
	}
	if a.Email != "" {
		p.Email = &a.Email
	}
	if a.Phone != "" {
		p.Phone = &a.Phone
	}
	if a.SocialID != "" {
		p.SocialID = &a.SocialID
	}
	if a.FederatedID != "" {
		p.FederatedID = &a.FederatedID
	}
	return p
}

// Registration is the input to phone+PIN account creation.
type Registration struct {
	Username      string
	DisplayName   string
	Phone         string
	Email         string
	PIN           string
	WalletAddress string
	SocialID      string
	PfpURL        string
}

// ProfileUpdate names the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName    *string
	ProfilePicture *string
	Phone          *string
}

// Resolver finds or creates exactly one account for any presented
// identifier, merging provider attributes without destroying stored data.
type Resolver struct {
	store  Store
	hasher PINHasher
	logger *slog.Logger
}

// NewResolver builds an identity resolver over the given store.
func NewResolver(store Store, hasher PINHasher, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, hasher: hasher, logger: logger}
}

// Resolve locates the account for the supplied identifier, creating one if
// no channel matches. A wallet address among the attributes wins over the
// primary identifier: it is cryptographically owned by the caller, so a
// match on it returns the account as-is with no merge.
func (r *Resolver) Resolve(ctx context.Context, kind Kind, value string, attrs Attributes) (Account, error) {
	if value == "" {
		return Account{}, fmt.Errorf("%s identifier is required", kind)
	}

	if attrs.WalletAddress != "" {
		acct, err := r.store.FindByWalletAddress(ctx, attrs.WalletAddress)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Account{}, err
		}
	}

	for _, lookup := range r.lookups(kind, value, attrs) {
		acct, err := lookup(ctx)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Account{}, err
		}
		return r.merge(ctx, acct, kind, value, attrs)
	}

	return r.create(ctx, kind, value, attrs)
}

// lookups returns the priority-ordered chain of find strategies for a
// channel. The federated channel falls back to a username match so a
// pre-existing username-based account is linked rather than duplicated.
func (r *Resolver) lookups(kind Kind, value string, attrs Attributes) []func(context.Context) (Account, error) {
	var chain []func(context.Context) (Account, error)
	switch kind {
	case KindPhone:
		chain = append(chain, func(ctx context.Context) (Account, error) {
			return r.store.FindByPhone(ctx, value)
		})
	case KindSocial:
		chain = append(chain, func(ctx context.Context) (Account, error) {
			return r.store.FindBySocialID(ctx, value)
		})
	case KindFederated:
		chain = append(chain, func(ctx context.Context) (Account, error) {
			return r.store.FindByFederatedID(ctx, value)
		})
		if attrs.Username != "" {
			chain = append(chain, func(ctx context.Context) (Account, error) {
				return r.store.FindByUsername(ctx, attrs.Username)
			})
		}
	}
	return chain
}

// merge applies the non-empty attributes onto an existing account and makes
// sure the resolved identifier itself is attached. Fields the provider did
// not supply are left untouched.
func (r *Resolver) merge(ctx context.Context, acct Account, kind Kind, value string, attrs Attributes) (Account, error) {
	patch := attrs.patch()
	switch kind {
	case KindPhone:
		if acct.Phone != value {
			patch.Phone = &value
		}
	case KindSocial:
		if acct.SocialID != value {
			patch.SocialID = &value
		}
	case KindFederated:
		if acct.FederatedID != value {
			patch.FederatedID = &value
		}
	}
	if patch.IsZero() {
		return acct, nil
	}
	return r.store.Update(ctx, acct.ID, patch)
}

func (r *Resolver) create(ctx context.Context, kind Kind, value string, attrs Attributes) (Account, error) {
	role, err := r.decideRole(ctx)
	if err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	acct := Account{
		ID:          uuid.NewString(),
		SocialID:    attrs.SocialID,
		FederatedID: attrs.FederatedID,
		Phone:       attrs.Phone,
		Email:       attrs.Email,
		Username:    attrs.Username,
		Name:        attrs.Name,
		DisplayName: attrs.DisplayName,
		PfpURL:      attrs.PfpURL,
		// new accounts start with the provider picture as their editable one
		ProfilePicture: attrs.PfpURL,
		WalletAddress:  attrs.WalletAddress,
		Status:         StatusActive,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch kind {
	case KindPhone:
		acct.Phone = value
	case KindSocial:
		acct.SocialID = value
	case KindFederated:
		acct.FederatedID = value
	}

	if err := r.store.Create(ctx, acct); err != nil {
		return Account{}, err
	}
	r.logger.Info("account created",
		slog.String("account_id", acct.ID),
		slog.String("channel", string(kind)),
		slog.String("role", string(role)),
	)
	return acct, nil
}

// decideRole grants admin to the very first account ever created. The
// count-then-create sequence is not atomic: two concurrent first
// registrations can both observe an empty store and both become admin.
// That window exists only at first contact and is recoverable through the
// role endpoint, so it is left as-is rather than serialized.
func (r *Resolver) decideRole(ctx context.Context) (Role, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return RoleAdmin, nil
	}
	return RoleUser, nil
}

// RegisterWithPhone creates an account from the phone registration flow.
// Username and phone are required; the username must be free
// case-insensitively and the PIN is hashed before it is stored.
func (r *Resolver) RegisterWithPhone(ctx context.Context, reg Registration) (Account, error) {
	if reg.Phone == "" {
		return Account{}, errors.New("phone is required")
	}
	if reg.Username == "" {
		return Account{}, errors.New("username is required")
	}

	hash, err := r.hasher.Hash(reg.PIN)
	if err != nil {
		return Account{}, err
	}

	if _, err := r.store.FindByUsername(ctx, reg.Username); err == nil {
		return Account{}, fmt.Errorf("username %q: %w", reg.Username, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	role, err := r.decideRole(ctx)
	if err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	acct := Account{
		ID:             uuid.NewString(),
		SocialID:       reg.SocialID,
		Phone:          reg.Phone,
		Email:          reg.Email,
		Username:       reg.Username,
		DisplayName:    reg.DisplayName,
		PfpURL:         reg.PfpURL,
		ProfilePicture: reg.PfpURL,
		WalletAddress:  reg.WalletAddress,
		PINHash:        hash,
		Status:         StatusActive,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.store.Create(ctx, acct); err != nil {
		return Account{}, err
	}
	r.logger.Info("account registered",
		slog.String("account_id", acct.ID),
		slog.String("username", acct.Username),
		slog.String("role", string(role)),
	)
	return acct, nil
}

// Get fetches an account by its internal identifier.
func (r *Resolver) Get(ctx context.Context, id string) (Account, error) {
	return r.store.FindByID(ctx, id)
}

// UpdateProfile changes the editable profile fields.
func (r *Resolver) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (Account, error) {
	patch := Patch{
		DisplayName:    upd.DisplayName,
		ProfilePicture: upd.ProfilePicture,
		Phone:          upd.Phone,
	}
	if patch.IsZero() {
		return r.store.FindByID(ctx, id)
	}
	return r.store.Update(ctx, id, patch)
}

// LinkWallet attaches a wallet address to an existing account, syncing any
// other provider attributes supplied with it.
func (r *Resolver) LinkWallet(ctx context.Context, id, address string, attrs Attributes) (Account, error) {
	if address == "" {
		return Account{}, errors.New("wallet address is required")
	}
	patch := attrs.patch()
	patch.WalletAddress = &address
	acct, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return Account{}, err
	}
	r.logger.Info("wallet linked", slog.String("account_id", id))
	return acct, nil
}

// LinkSocialAccount records the provider identity link for an account.
func (r *Resolver) LinkSocialAccount(ctx context.Context, accountID, socialID, username string) (SocialAccount, error) {
	if _, err := r.store.FindByID(ctx, accountID); err != nil {
		return SocialAccount{}, err
	}
	return r.store.UpsertSocialAccount(ctx, accountID, socialID, username)
}

// SetStatus is an administrative status change.
func (r *Resolver) SetStatus(ctx context.Context, id string, status Status) (Account, error) {
	if !status.Valid() {
		return Account{}, fmt.Errorf("invalid status %q", status)
	}
	return r.store.Update(ctx, id, Patch{Status: &status})
}

// SetRole is an administrative role change.
func (r *Resolver) SetRole(ctx context.Context, id string, role Role) (Account, error) {
	if !role.Valid() {
		return Account{}, fmt.Errorf("invalid role %q", role)
	}
	return r.store.Update(ctx, id, Patch{Role: &role})
}
