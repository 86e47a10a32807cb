package account

import (
	"context"
	"time"
)

// MaxFailedAttempts is the number of wrong PINs that locks an account.
const MaxFailedAttempts = 3

// Lockout tracks failed PIN verifications and moves accounts between the
// unlocked and locked states. The lock never expires on its own; only an
// administrative unlock clears it.
type Lockout struct {
	store  Store
	hasher PINHasher
}

// NewLockout builds a lockout controller over the given store.
func NewLockout(store Store, hasher PINHasher) *Lockout {
	return &Lockout{store: store, hasher: hasher}
}

// VerifyPIN checks a plain PIN against the account's stored hash. It
// performs no writes: callers feed the outcome into
// IncrementFailedAttempts or ResetFailedAttempts, once per attempt.
func (l *Lockout) VerifyPIN(acct Account, pin string) (bool, error) {
	if !acct.HasPIN() {
		return false, ErrNoPIN
	}
	return l.hasher.Verify(pin, acct.PINHash), nil
}

// IncrementFailedAttempts bumps the counter by one. Reaching
// MaxFailedAttempts while unlocked sets the lock timestamp; the returned
// bool reports that transition.
func (l *Lockout) IncrementFailedAttempts(ctx context.Context, id string) (Account, bool, error) {
	acct, err := l.store.FindByID(ctx, id)
	if err != nil {
		return Account{}, false, err
	}

	attempts := acct.FailedAttempts + 1
	patch := Patch{FailedAttempts: &attempts}
	transitioned := false
	if attempts >= MaxFailedAttempts && !acct.IsLocked() {
		now := time.Now().UTC()
		patch.LockedAt = &now
		transitioned = true
	}

	updated, err := l.store.Update(ctx, id, patch)
	if err != nil {
		return Account{}, false, err
	}
	return updated, transitioned, nil
}

// ResetFailedAttempts zeroes the counter without touching the lock state,
// so a still-locked account can be prepared for unlock.
func (l *Lockout) ResetFailedAttempts(ctx context.Context, id string) (Account, error) {
	zero := 0
	return l.store.Update(ctx, id, Patch{FailedAttempts: &zero})
}

// Lock sets the lock timestamp. Locking an already-locked account
// refreshes the timestamp.
func (l *Lockout) Lock(ctx context.Context, id string) (Account, error) {
	now := time.Now().UTC()
	return l.store.Update(ctx, id, Patch{LockedAt: &now})
}

// Unlock clears the lock and always zeroes the counter; there is no
// unlock-without-reset path.
func (l *Lockout) Unlock(ctx context.Context, id string) (Account, error) {
	zero := 0
	return l.store.Update(ctx, id, Patch{FailedAttempts: &zero, ClearLock: true})
}

// SetPIN hashes and stores a credential for an account that has none yet.
func (l *Lockout) SetPIN(ctx context.Context, id, pin string) (Account, error) {
	hash, err := l.hasher.Hash(pin)
	if err != nil {
		return Account{}, err
	}
	return l.store.Update(ctx, id, Patch{PINHash: hash})
}

// ChangePIN replaces the credential and zeroes the failed-attempt counter.
// The caller is responsible for having verified the previous PIN first.
func (l *Lockout) ChangePIN(ctx context.Context, id, newPIN string) (Account, error) {
	hash, err := l.hasher.Hash(newPIN)
	if err != nil {
		return Account{}, err
	}
	zero := 0
	return l.store.Update(ctx, id, Patch{PINHash: hash, FailedAttempts: &zero})
}
