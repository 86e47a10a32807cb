package account

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/revelry-app/revelry/internal/logging"
)

func newTestLockout(t *testing.T) (*Lockout, Account) {
	t.Helper()
	store := NewMemoryStore()
	hasher := NewPINHasher(bcrypt.MinCost)
	resolver := NewResolver(store, hasher, logging.Discard())

	acct, err := resolver.RegisterWithPhone(context.Background(), Registration{
		Username: "lockme",
		Phone:    "+1555000100",
		PIN:      "1234",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewLockout(store, hasher), acct
}

func TestThreeFailuresLockTheAccount(t *testing.T) {
	lockout, acct := newTestLockout(t)
	ctx := context.Background()

	wantAttempts := []int{1, 2, 3}
	wantLocked := []bool{false, false, true}
	for i := range wantAttempts {
		ok, err := lockout.VerifyPIN(acct, "0000")
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if ok {
			t.Fatalf("wrong pin must not verify")
		}

		updated, transitioned, err := lockout.IncrementFailedAttempts(ctx, acct.ID)
		if err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
		if updated.FailedAttempts != wantAttempts[i] {
			t.Fatalf("attempt %d: expected counter %d, got %d", i, wantAttempts[i], updated.FailedAttempts)
		}
		if transitioned != wantLocked[i] {
			t.Fatalf("attempt %d: expected transition %v, got %v", i, wantLocked[i], transitioned)
		}
	}

	locked, _, err := lockout.IncrementFailedAttempts(ctx, acct.ID)
	if err != nil {
		t.Fatalf("increment past lock: %v", err)
	}
	if !locked.IsLocked() || locked.FailedAttempts != 4 {
		t.Fatalf("expected still locked with counter 4, got %+v", locked)
	}
}

func TestUnlockClearsLockAndCounter(t *testing.T) {
	lockout, acct := newTestLockout(t)
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts; i++ {
		if _, _, err := lockout.IncrementFailedAttempts(ctx, acct.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	unlocked, err := lockout.Unlock(ctx, acct.ID)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if unlocked.IsLocked() || unlocked.FailedAttempts != 0 {
		t.Fatalf("expected unlocked with zero attempts, got %+v", unlocked)
	}
}

func TestResetLeavesLockInPlace(t *testing.T) {
	lockout, acct := newTestLockout(t)
	ctx := context.Background()

	for i := 0; i < MaxFailedAttempts; i++ {
		if _, _, err := lockout.IncrementFailedAttempts(ctx, acct.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	reset, err := lockout.ResetFailedAttempts(ctx, acct.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.FailedAttempts != 0 {
		t.Fatalf("expected counter reset, got %d", reset.FailedAttempts)
	}
	if !reset.IsLocked() {
		t.Fatalf("reset alone must not unlock the account")
	}
}

func TestExplicitLockIsIdempotent(t *testing.T) {
	lockout, acct := newTestLockout(t)
	ctx := context.Background()

	first, err := lockout.Lock(ctx, acct.ID)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !first.IsLocked() {
		t.Fatalf("expected locked")
	}

	again, err := lockout.Lock(ctx, acct.ID)
	if err != nil {
		t.Fatalf("lock again: %v", err)
	}
	if !again.IsLocked() {
		t.Fatalf("expected still locked")
	}
}

func TestChangePINResetsCounter(t *testing.T) {
	lockout, acct := newTestLockout(t)
	ctx := context.Background()

	if _, _, err := lockout.IncrementFailedAttempts(ctx, acct.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}

	changed, err := lockout.ChangePIN(ctx, acct.ID, "5678")
	if err != nil {
		t.Fatalf("change pin: %v", err)
	}
	if changed.FailedAttempts != 0 {
		t.Fatalf("expected counter reset on pin change, got %d", changed.FailedAttempts)
	}

	ok, err := lockout.VerifyPIN(changed, "5678")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected new pin to verify")
	}
}

func TestVerifyPINWithoutCredential(t *testing.T) {
	store := NewMemoryStore()
	hasher := NewPINHasher(bcrypt.MinCost)
	resolver := NewResolver(store, hasher, logging.Discard())
	lockout := NewLockout(store, hasher)
	ctx := context.Background()

	acct, err := resolver.Resolve(ctx, KindSocial, "fid-nopin", Attributes{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := lockout.VerifyPIN(acct, "1234"); !errors.Is(err, ErrNoPIN) {
		t.Fatalf("expected ErrNoPIN, got %v", err)
	}

	set, err := lockout.SetPIN(ctx, acct.ID, "1234")
	if err != nil {
		t.Fatalf("set pin: %v", err)
	}
	ok, err := lockout.VerifyPIN(set, "1234")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected set pin to verify")
	}
}
