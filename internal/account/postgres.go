package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

const accountColumns = `id, social_id, federated_id, phone, email, username, name, pfp_url,
        display_name, profile_picture, wallet_address, pin_hash, failed_attempts, locked_at,
        status, role, created_at, updated_at`

// PostgresStore implements Store using PostgreSQL. Uniqueness of phone,
// username (lower-cased index), wallet address and the two provider ids is
// enforced by partial unique indexes, which backstop concurrent creates.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed account store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// scanAccount maps one row into an Account, translating NULL columns into
// zero values. Every lookup funnels through here.
func scanAccount(row pgx.Row) (Account, error) {
	var (
		id                   uuid.UUID
		socialID, fedID      *string
		phone, email         *string
		username, name       *string
		pfpURL, displayName  *string
		profilePicture       *string
		walletAddress        *string
		pinHash              []byte
		failedAttempts       *int32
		lockedAt             *time.Time
		status, role         *string
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &socialID, &fedID, &phone, &email, &username, &name, &pfpURL,
		&displayName, &profilePicture, &walletAddress, &pinHash, &failedAttempts, &lockedAt,
		&status, &role, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}

	acct := Account{
		ID:             id.String(),
		SocialID:       deref(socialID),
		FederatedID:    deref(fedID),
		Phone:          deref(phone),
		Email:          deref(email),
		Username:       deref(username),
		Name:           deref(name),
		PfpURL:         deref(pfpURL),
		DisplayName:    deref(displayName),
		ProfilePicture: deref(profilePicture),
		WalletAddress:  deref(walletAddress),
		PINHash:        pinHash,
		LockedAt:       lockedAt,
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      updatedAt.UTC(),
	}
	if failedAttempts != nil {
		acct.FailedAttempts = int(*failedAttempts)
	}
	if status != nil {
		acct.Status = Status(*status)
	}
	if role != nil {
		acct.Role = Role(*role)
	}
	return acct, nil
}

func (s *PostgresStore) findBy(ctx context.Context, where string, arg any) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	return scanAccount(row)
}

// FindByID fetches an account by its primary identifier.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return s.findBy(ctx, `id = $1`, acctID)
}

// FindByPhone fetches an account by phone number.
func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (Account, error) {
	return s.findBy(ctx, `phone = $1`, phone)
}

// FindByUsername fetches an account by username, case-insensitively.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (Account, error) {
	return s.findBy(ctx, `lower(username) = lower($1)`, username)
}

// FindByWalletAddress fetches an account by blockchain address.
func (s *PostgresStore) FindByWalletAddress(ctx context.Context, address string) (Account, error) {
	return s.findBy(ctx, `wallet_address = $1`, address)
}

// FindBySocialID fetches an account by its social provider identifier.
func (s *PostgresStore) FindBySocialID(ctx context.Context, socialID string) (Account, error) {
	return s.findBy(ctx, `social_id = $1`, socialID)
}

// FindByFederatedID fetches an account by its federated sign-in identifier.
func (s *PostgresStore) FindByFederatedID(ctx context.Context, federatedID string) (Account, error) {
	return s.findBy(ctx, `federated_id = $1`, federatedID)
}

// Create inserts a new account.
func (s *PostgresStore) Create(ctx context.Context, acct Account) error {
	acctID, err := uuid.Parse(acct.ID)
	if err != nil {
		return fmt.Errorf("parse account id: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		acctID, nullable(acct.SocialID), nullable(acct.FederatedID), nullable(acct.Phone),
		nullable(acct.Email), nullable(acct.Username), nullable(acct.Name), nullable(acct.PfpURL),
		nullable(acct.DisplayName), nullable(acct.ProfilePicture), nullable(acct.WalletAddress),
		acct.PINHash, acct.FailedAttempts, acct.LockedAt, nullable(string(acct.Status)),
		string(acct.Role), acct.CreatedAt.UTC(), acct.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// Update applies the patch to the identified row and returns the result.
func (s *PostgresStore) Update(ctx context.Context, id string, patch Patch) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.SocialID != nil {
		set("social_id", nullable(*patch.SocialID))
	}
	if patch.FederatedID != nil {
		set("federated_id", nullable(*patch.FederatedID))
	}
	if patch.Phone != nil {
		set("phone", nullable(*patch.Phone))
	}
	if patch.Email != nil {
		set("email", nullable(*patch.Email))
	}
	if patch.Username != nil {
		set("username", nullable(*patch.Username))
	}
	if patch.Name != nil {
		set("name", nullable(*patch.Name))
	}
	if patch.PfpURL != nil {
		set("pfp_url", nullable(*patch.PfpURL))
	}
	if patch.DisplayName != nil {
		set("display_name", nullable(*patch.DisplayName))
	}
	if patch.ProfilePicture != nil {
		set("profile_picture", nullable(*patch.ProfilePicture))
	}
	if patch.WalletAddress != nil {
		set("wallet_address", nullable(*patch.WalletAddress))
	}
	if patch.PINHash != nil {
		set("pin_hash", patch.PINHash)
	}
	if patch.FailedAttempts != nil {
		set("failed_attempts", *patch.FailedAttempts)
	}
	if patch.LockedAt != nil {
		set("locked_at", patch.LockedAt.UTC())
	} else if patch.ClearLock {
		set("locked_at", nil)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Role != nil {
		set("role", string(*patch.Role))
	}
	set("updated_at", time.Now().UTC())

	args = append(args, acctID)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	cmd, err := s.db.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return Account{}, ErrConflict
	}
	if err != nil {
		return Account{}, err
	}
	if cmd.RowsAffected() == 0 {
		return Account{}, ErrNotFound
	}
	return s.findBy(ctx, `id = $1`, acctID)
}

// Count returns the total number of accounts, used by the role bootstrap.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpsertSocialAccount creates or repoints the link record for a provider
// identity, keyed on the provider identifier.
func (s *PostgresStore) UpsertSocialAccount(ctx context.Context, accountID, socialID, username string) (SocialAccount, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return SocialAccount{}, ErrNotFound
	}
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx, `INSERT INTO social_accounts (id, account_id, social_id, username, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        ON CONFLICT (social_id) DO UPDATE
            SET account_id = EXCLUDED.account_id, username = EXCLUDED.username, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`,
		uuid.New(), acctID, socialID, username, now)

	var (
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &createdAt); err != nil {
		return SocialAccount{}, err
	}
	return SocialAccount{
		ID:        id.String(),
		AccountID: accountID,
		SocialID:  socialID,
		Username:  username,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: now,
	}, nil
}

// FindSocialAccountBySocialID fetches the link record for a provider identifier.
func (s *PostgresStore) FindSocialAccountBySocialID(ctx context.Context, socialID string) (SocialAccount, error) {
	row := s.db.QueryRow(ctx, `SELECT id, account_id, social_id, username, created_at, updated_at
        FROM social_accounts WHERE social_id = $1`, socialID)

	var (
		id, acctID           uuid.UUID
		link                 SocialAccount
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &acctID, &link.SocialID, &link.Username, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SocialAccount{}, ErrNotFound
		}
		return SocialAccount{}, err
	}
	link.ID = id.String()
	link.AccountID = acctID.String()
	link.CreatedAt = createdAt.UTC()
	link.UpdatedAt = updatedAt.UTC()
	return link, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
