package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local development. It
// enforces the same uniqueness rules the Postgres indexes do.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account       // keyed by account id
	socials  map[string]SocialAccount // keyed by provider social id
}

// NewMemoryStore builds an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		socials:  make(map[string]SocialAccount),
	}
}

func (s *MemoryStore) findBy(match func(Account) bool) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acct := range s.accounts {
		if match(acct) {
			return acct, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *MemoryStore) FindByPhone(_ context.Context, phone string) (Account, error) {
	return s.findBy(func(a Account) bool { return a.Phone != "" && a.Phone == phone })
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (Account, error) {
	return s.findBy(func(a Account) bool {
		return a.Username != "" && strings.EqualFold(a.Username, username)
	})
}

func (s *MemoryStore) FindByWalletAddress(_ context.Context, address string) (Account, error) {
	return s.findBy(func(a Account) bool { return a.WalletAddress != "" && a.WalletAddress == address })
}

func (s *MemoryStore) FindBySocialID(_ context.Context, socialID string) (Account, error) {
	return s.findBy(func(a Account) bool { return a.SocialID != "" && a.SocialID == socialID })
}

func (s *MemoryStore) FindByFederatedID(_ context.Context, federatedID string) (Account, error) {
	return s.findBy(func(a Account) bool { return a.FederatedID != "" && a.FederatedID == federatedID })
}

// conflicts reports whether acct collides with any stored account other
// than itself on a unique identifier. Callers must hold the lock.
func (s *MemoryStore) conflicts(acct Account) bool {
	for _, other := range s.accounts {
		if other.ID == acct.ID {
			continue
		}
		if acct.Phone != "" && acct.Phone == other.Phone {
			return true
		}
		if acct.Username != "" && strings.EqualFold(acct.Username, other.Username) {
			return true
		}
		if acct.WalletAddress != "" && acct.WalletAddress == other.WalletAddress {
			return true
		}
		if acct.SocialID != "" && acct.SocialID == other.SocialID {
			return true
		}
		if acct.FederatedID != "" && acct.FederatedID == other.FederatedID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Create(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.ID]; exists {
		return ErrConflict
	}
	if s.conflicts(acct) {
		return ErrConflict
	}
	s.accounts[acct.ID] = acct
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch Patch) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	updated := patch.apply(acct, time.Now().UTC())
	if s.conflicts(updated) {
		return Account{}, ErrConflict
	}
	s.accounts[id] = updated
	return updated, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.accounts)), nil
}

func (s *MemoryStore) UpsertSocialAccount(_ context.Context, accountID, socialID, username string) (SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.socials[socialID]; ok {
		existing.AccountID = accountID
		existing.Username = username
		existing.UpdatedAt = now
		s.socials[socialID] = existing
		return existing, nil
	}
	link := SocialAccount{
		ID:        uuid.NewString(),
		AccountID: accountID,
		SocialID:  socialID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.socials[socialID] = link
	return link, nil
}

func (s *MemoryStore) FindSocialAccountBySocialID(_ context.Context, socialID string) (SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.socials[socialID]
	if !ok {
		return SocialAccount{}, ErrNotFound
	}
	return link, nil
}
