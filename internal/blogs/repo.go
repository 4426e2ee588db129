package blogs

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

// ErrSlugTaken indicates a slug collision on create or update.
var ErrSlugTaken = errors.New("blogs: slug already in use")

// Repository defines persistence operations for posts.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Post, int, error)
	GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id int64) error
	SetPublished(ctx context.Context, id int64, at time.Time) (*Post, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const postColumns = `id, title, slug, excerpt, body, status, author_id, published_at, created_at, updated_at`

// List returns a page of posts plus the total matching count. Draft
// rows are excluded unless the filter asks for them.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Post, int, error) {
	where := `WHERE status = 'published'`
	if filter.IncludeDrafts {
		where = ``
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM blog_posts `+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM blog_posts `+where+`
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetBySlug fetches a post by slug. Drafts stay hidden unless asked for.
func (r *PGRepository) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1 AND status = 'published'`
	if includeDrafts {
		query = `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1`
	}
	return scanPostRow(r.pool.QueryRow(ctx, query, slug))
}

// GetByID fetches a post regardless of status.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	return scanPostRow(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
}

// Create inserts a new post as a draft.
func (r *PGRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, body, status, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+postColumns,
		post.Title, post.Slug, post.Excerpt, post.Body, string(post.Status), post.AuthorID,
	)
	created, err := scanPostRow(row)
	if err != nil {
		return nil, mapSlugConflict(err)
	}
	return created, nil
}

// Update rewrites the mutable fields of a post.
func (r *PGRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE blog_posts
		SET title = $2, slug = $3, excerpt = $4, body = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+postColumns,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Body,
	)
	updated, err := scanPostRow(row)
	if err != nil {
		return nil, mapSlugConflict(err)
	}
	return updated, nil
}

// Delete removes a post.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetPublished flips a post to published and stamps the time.
func (r *PGRepository) SetPublished(ctx context.Context, id int64, at time.Time) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE blog_posts
		SET status = 'published', published_at = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+postColumns, id, at.UTC())
	return scanPostRow(row)
}

func scanPostRow(row pgx.Row) (*Post, error) {
	var (
		p           Post
		status      string
		publishedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &status, &p.AuthorID, &publishedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	p.Status = PostStatus(status)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func mapSlugConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
