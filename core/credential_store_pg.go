package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgQuerier is the subset of *pgxpool.Pool used by the Postgres stores.
type PgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PgCredentialStore implements CredentialStore on the accounts table.
// The pool is owned by the caller.
type PgCredentialStore struct {
	db PgQuerier
}

func NewPgCredentialStore(db PgQuerier) *PgCredentialStore {
	return &PgCredentialStore{db: db}
}

func (s *PgCredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM accounts WHERE username=$1)`
	var ok bool
	if err := s.db.QueryRow(ctx, q, username).Scan(&ok); err != nil {
		return false, storeError("accounts.exists", err)
	}
	return ok, nil
}

func (s *PgCredentialStore) Get(ctx context.Context, username string) (Credential, bool, error) {
	const q = `SELECT username, password FROM accounts WHERE username=$1`
	var c Credential
	if err := s.db.QueryRow(ctx, q, username).Scan(&c.Username, &c.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, false, nil
		}
		return Credential{}, false, storeError("accounts.get", err)
	}
	return c, true, nil
}

// Put inserts the account; the primary key on username makes the check and
// insert a single statement.
func (s *PgCredentialStore) Put(ctx context.Context, username, password string) error {
	const q = `INSERT INTO accounts (username, password) VALUES ($1,$2) ON CONFLICT (username) DO NOTHING`
	tag, err := s.db.Exec(ctx, q, username, password)
	if err != nil {
		if isUniqueViolation(err) {
			return &AuthError{Kind: ErrDuplicateAccount}
		}
		return storeError("accounts.put", err)
	}
	if tag.RowsAffected() == 0 {
		return &AuthError{Kind: ErrDuplicateAccount}
	}
	return nil
}

func (s *PgCredentialStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return storeError("accounts.ping", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
