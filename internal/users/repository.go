package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-cms/meridian-cms/internal/auth"
	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns a page of users ordered by creation time.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, username, full_name, role, status, created_at, updated_at, last_login_at
		FROM users
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var (
			u         User
			role      string
			status    string
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
			lastLogin pgtype.Timestamptz
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &role, &status, &createdAt, &updatedAt, &lastLogin); err != nil {
			return nil, 0, err
		}
		u.Role = auth.Role(role)
		u.Status = auth.Status(status)
		u.CreatedAt = createdAt.Time
		u.UpdatedAt = updatedAt.Time
		if lastLogin.Valid {
			t := lastLogin.Time
			u.LastLoginAt = &t
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateRole reassigns the account role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus moves the account through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status auth.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
