package account

import "time"

// Role is the closed set of privilege levels, ordered user < organizer < admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      0,
	RoleOrganizer: 1,
	RoleAdmin:     2,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Status is the account standing. The zero value is read as active; rows
// created before the status column existed carry no value.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBanned:
		return true
	}
	return false
}

// Account is the durable identity record. A person may be reached through
// any of the identifier fields; all of them resolve to the same row.
type Account struct {
	ID             string
	SocialID       string // provider-issued social identifier
	FederatedID    string // federated sign-in identifier
	Phone          string // primary login channel
	Email          string
	Username       string // unique, case-insensitive
	Name           string // display name as reported by a provider
	PfpURL         string // profile picture as reported by a provider
	DisplayName    string // editable display name
	ProfilePicture string // editable profile picture
	WalletAddress  string
	PINHash        []byte // nil means no PIN set
	FailedAttempts int
	LockedAt       *time.Time // non-nil means locked; cleared only by unlock
	Status         Status
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive treats an absent status as active.
func (a Account) IsActive() bool {
	return a.Status == StatusActive || a.Status == ""
}

// IsBanned reports whether the account has been banned.
func (a Account) IsBanned() bool {
	return a.Status == StatusBanned
}

// IsLocked reports whether PIN verification is currently disallowed.
func (a Account) IsLocked() bool {
	return a.LockedAt != nil
}

// HasPIN reports whether a credential has been set.
func (a Account) HasPIN() bool {
	return len(a.PINHash) > 0
}

// IsAdmin reports whether the account may manage other accounts.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsOrganizer reports organizer-level privilege or above.
func (a Account) IsOrganizer() bool {
	return a.Role.AtLeast(RoleOrganizer)
}

// SocialAccount binds one provider identity to an account. Unique on the
// provider identifier; observed identities are upserted, never duplicated.
type SocialAccount struct {
	ID        string
	AccountID string
	SocialID  string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
