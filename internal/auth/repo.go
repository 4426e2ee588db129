package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// Store is the user-store collaborator the auth core reads principals
// from. RecordLogin is the only write on the hot path and is treated as
// best-effort by callers.
type Store interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed Store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const userColumns = `id, email, username, full_name, role, status, password_hash, created_at, updated_at, last_login_at`

// FindByID fetches a user by primary key.
func (s *PGStore) FindByID(ctx context.Context, id int64) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByIdentifier fetches a user by email or username.
func (s *PGStore) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1`, identifier)
	return scanUser(row)
}

// Create inserts a new user. A unique violation on email or username
// maps to ErrDuplicateIdentifier.
func (s *PGStore) Create(ctx context.Context, user *User) (*User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, full_name, role, status, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+userColumns,
		user.Email, user.Username, user.FullName, string(user.Role), string(user.Status), user.PasswordHash,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateIdentifier
		}
		return nil, err
	}
	return created, nil
}

// UpdatePassword replaces the stored credential digest.
func (s *PGStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecordLogin stamps the last successful login time.
func (s *PGStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at.UTC())
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		role      string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		lastLogin pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &role, &status, &u.PasswordHash, &createdAt, &updatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	u.Status = Status(status)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

var _ Store = (*PGStore)(nil)
