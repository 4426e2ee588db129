package blogs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// CreateInput carries the fields for a new post.
type CreateInput struct {
	Title    string
	Excerpt  string
	Body     string
	AuthorID int64
}

// UpdateInput carries the mutable fields of a post.
type UpdateInput struct {
	Title   string
	Excerpt string
	Body    string
}

// ListResult bundles a page of posts with pagination metadata.
type ListResult struct {
	Items      []Post            `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service handles blog business logic. Published listings are served
// through the versioned cache; anything touching drafts goes straight
// to the repository.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *Cache
}

// NewService builds a Service instance.
func NewService(logger *slog.Logger, repo Repository, cache *Cache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// List returns a page of posts. Draft visibility is the caller's
// decision, made from the resolved principal's permissions.
func (s *Service) List(ctx context.Context, page, perPage int, includeDrafts bool) (*ListResult, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	filter := ListFilter{Offset: pagination.Offset(), Limit: pagination.PerPage, IncludeDrafts: includeDrafts}

	if includeDrafts {
		posts, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &ListResult{Items: posts, Pagination: shared.NewPagination(page, pagination.PerPage, total)}, nil
	}

	key, err := s.cache.BuildKey(ctx, "blogs", "published", fmt.Sprintf("p%d", pagination.Page), fmt.Sprintf("n%d", pagination.PerPage))
	if err != nil {
		s.logger.Warn("blogs cache key", slog.Any("error", err))
		key = ""
	}

	var result ListResult
	load := func(ctx context.Context) (any, error) {
		posts, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []Post{}
		}
		return ListResult{Items: posts, Pagination: shared.NewPagination(page, pagination.PerPage, total)}, nil
	}
	if key == "" {
		fresh, err := load(ctx)
		if err != nil {
			return nil, err
		}
		result = fresh.(ListResult)
		return &result, nil
	}
	if err := s.cache.FetchJSON(ctx, key, &result, load); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a single post by slug.
func (s *Service) Get(ctx context.Context, slug string, includeDrafts bool) (*Post, error) {
	return s.repo.GetBySlug(ctx, slug, includeDrafts)
}

// Create inserts a new draft post with a slug derived from the title.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Post, error) {
	post := &Post{
		Title:    input.Title,
		Slug:     Slugify(input.Title),
		Excerpt:  input.Excerpt,
		Body:     input.Body,
		Status:   StatusDraft,
		AuthorID: input.AuthorID,
	}
	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update rewrites a post's content, re-deriving the slug.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Title = input.Title
	post.Slug = Slugify(input.Title)
	post.Excerpt = input.Excerpt
	post.Body = input.Body

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Publish flips a post to published.
func (s *Service) Publish(ctx context.Context, id int64) (*Post, error) {
	post, err := s.repo.SetPublished(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("blogs cache bump", slog.Any("error", err))
	}
}
