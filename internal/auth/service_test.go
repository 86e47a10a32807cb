package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/revelry-app/revelry/internal/account"
	"github.com/revelry-app/revelry/internal/logging"
)

func setupLogin(t *testing.T) (*Service, account.Account, *account.Lockout) {
	t.Helper()
	store := account.NewMemoryStore()
	hasher := account.NewPINHasher(bcrypt.MinCost)
	resolver := account.NewResolver(store, hasher, logging.Discard())
	lockout := account.NewLockout(store, hasher)

	acct, err := resolver.RegisterWithPhone(context.Background(), account.Registration{
		Username: "taylor",
		Phone:    "+1555000200",
		PIN:      "1234",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewService(store, lockout, logging.Discard()), acct, lockout
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	svc, acct, _ := setupLogin(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, acct.Phone, "0000"); !errors.Is(err, ErrInvalidPIN) {
		t.Fatalf("expected invalid pin, got %v", err)
	}

	got, err := svc.Login(ctx, acct.Phone, "1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.FailedAttempts != 0 {
		t.Fatalf("expected counter reset on success, got %d", got.FailedAttempts)
	}
}

func TestLoginLocksAfterThreeFailures(t *testing.T) {
	svc, acct, _ := setupLogin(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, acct.Phone, "0000"); !errors.Is(err, ErrInvalidPIN) {
			t.Fatalf("attempt %d: expected invalid pin, got %v", i, err)
		}
	}

	if _, err := svc.Login(ctx, acct.Phone, "0000"); !errors.Is(err, account.ErrLocked) {
		t.Fatalf("expected lock on third failure, got %v", err)
	}

	// the correct pin is refused while locked
	if _, err := svc.Login(ctx, acct.Phone, "1234"); !errors.Is(err, account.ErrLocked) {
		t.Fatalf("expected locked account to reject login, got %v", err)
	}
}

func TestLoginAfterAdminUnlock(t *testing.T) {
	svc, acct, lockout := setupLogin(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Login(ctx, acct.Phone, "0000") // nolint:errcheck
	}

	if _, err := lockout.Unlock(ctx, acct.ID); err != nil {
		t.Fatalf("unlock: %v", err)
	}

	got, err := svc.Login(ctx, acct.Phone, "1234")
	if err != nil {
		t.Fatalf("login after unlock: %v", err)
	}
	if got.ID != acct.ID {
		t.Fatalf("expected account %s, got %s", acct.ID, got.ID)
	}
}

func TestLoginRejectsBanned(t *testing.T) {
	svc, acct, _ := setupLogin(t)
	ctx := context.Background()

	banned := account.StatusBanned
	if _, err := svc.store.Update(ctx, acct.ID, account.Patch{Status: &banned}); err != nil {
		t.Fatalf("ban: %v", err)
	}

	if _, err := svc.Login(ctx, acct.Phone, "1234"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestLoginWithoutPINIsNotCounted(t *testing.T) {
	store := account.NewMemoryStore()
	hasher := account.NewPINHasher(bcrypt.MinCost)
	resolver := account.NewResolver(store, hasher, logging.Discard())
	lockout := account.NewLockout(store, hasher)
	svc := NewService(store, lockout, logging.Discard())
	ctx := context.Background()

	acct, err := resolver.Resolve(ctx, account.KindSocial, "fid-login", account.Attributes{Phone: "+1555000201"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.Login(ctx, "+1555000201", "1234"); !errors.Is(err, account.ErrNoPIN) {
		t.Fatalf("expected ErrNoPIN, got %v", err)
	}

	got, err := store.FindByID(ctx, acct.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.FailedAttempts != 0 {
		t.Fatalf("no-credential login must not count as a failed attempt, got %d", got.FailedAttempts)
	}
}
