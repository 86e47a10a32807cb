package account

import "errors"

var (
	// ErrNotFound indicates no account matches the supplied identifier.
	ErrNotFound = errors.New("account not found")

	// ErrConflict indicates a uniqueness rule (phone, username, wallet
	// address, social or federated id) was violated on create or update.
	ErrConflict = errors.New("identifier already in use")

	// ErrNoPIN indicates verification was attempted against an account
	// that has no credential set. Distinct from a wrong PIN, which is a
	// plain false outcome and feeds the lockout counter.
	ErrNoPIN = errors.New("no pin set")

	// ErrLocked indicates the account is locked and requires an
	// administrative unlock.
	ErrLocked = errors.New("account locked")
)
