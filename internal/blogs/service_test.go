package blogs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-cms/meridian-cms/internal/blogs"
	"github.com/meridian-cms/meridian-cms/internal/shared"
)

type stubRepo struct {
	posts     map[int64]*blogs.Post
	nextID    int64
	listCalls int
}

func newStubRepo(posts ...*blogs.Post) *stubRepo {
	r := &stubRepo{posts: make(map[int64]*blogs.Post), nextID: 1}
	for _, p := range posts {
		r.posts[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *stubRepo) List(ctx context.Context, filter blogs.ListFilter) ([]blogs.Post, int, error) {
	r.listCalls++
	var out []blogs.Post
	for _, p := range r.posts {
		if !filter.IncludeDrafts && p.Status != blogs.StatusPublished {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *stubRepo) GetBySlug(ctx context.Context, slug string, includeDrafts bool) (*blogs.Post, error) {
	for _, p := range r.posts {
		if p.Slug != slug {
			continue
		}
		if !includeDrafts && p.Status != blogs.StatusPublished {
			return nil, shared.ErrNotFound
		}
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubRepo) GetByID(ctx context.Context, id int64) (*blogs.Post, error) {
	if p, ok := r.posts[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubRepo) Create(ctx context.Context, post *blogs.Post) (*blogs.Post, error) {
	for _, existing := range r.posts {
		if existing.Slug == post.Slug {
			return nil, blogs.ErrSlugTaken
		}
	}
	created := *post
	created.ID = r.nextID
	r.nextID++
	r.posts[created.ID] = &created
	return &created, nil
}

func (r *stubRepo) Update(ctx context.Context, post *blogs.Post) (*blogs.Post, error) {
	if _, ok := r.posts[post.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	updated := *post
	r.posts[post.ID] = &updated
	return &updated, nil
}

func (r *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.posts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *stubRepo) SetPublished(ctx context.Context, id int64, at time.Time) (*blogs.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.Status = blogs.StatusPublished
	p.PublishedAt = &at
	return p, nil
}

func newTestService(t *testing.T, repo blogs.Repository) *blogs.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return blogs.NewService(slog.Default(), repo, blogs.NewCache(client, time.Minute))
}

func publishedPost(id int64, slug string) *blogs.Post {
	now := time.Now()
	return &blogs.Post{
		ID: id, Title: slug, Slug: slug, Body: "body",
		Status: blogs.StatusPublished, AuthorID: 1,
		PublishedAt: &now, CreatedAt: now, UpdatedAt: now,
	}
}

func TestListServesPublishedFromCache(t *testing.T) {
	repo := newStubRepo(publishedPost(1, "first"))
	service := newTestService(t, repo)

	first, err := service.List(context.Background(), 1, 20, false)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	require.Equal(t, 1, repo.listCalls)

	// Second read is a cache hit, no repository round trip.
	second, err := service.List(context.Background(), 1, 20, false)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, 1, repo.listCalls)
}

func TestDraftListingBypassesCache(t *testing.T) {
	repo := newStubRepo(publishedPost(1, "first"))
	repo.posts[2] = &blogs.Post{ID: 2, Title: "draft", Slug: "draft", Body: "b", Status: blogs.StatusDraft, AuthorID: 1}
	service := newTestService(t, repo)

	result, err := service.List(context.Background(), 1, 20, true)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	again, err := service.List(context.Background(), 1, 20, true)
	require.NoError(t, err)
	require.Len(t, again.Items, 2)
	require.Equal(t, 2, repo.listCalls)
}

func TestPublishInvalidatesCachedListing(t *testing.T) {
	repo := newStubRepo(publishedPost(1, "first"))
	repo.posts[2] = &blogs.Post{ID: 2, Title: "draft", Slug: "draft", Body: "b", Status: blogs.StatusDraft, AuthorID: 1}
	service := newTestService(t, repo)

	result, err := service.List(context.Background(), 1, 20, false)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	_, err = service.Publish(context.Background(), 2)
	require.NoError(t, err)

	result, err = service.List(context.Background(), 1, 20, false)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
}

func TestCreateDerivesSlug(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(t, repo)

	post, err := service.Create(context.Background(), blogs.CreateInput{
		Title:    "Ten Reasons to Like Go",
		Body:     "content",
		AuthorID: 7,
	})
	require.NoError(t, err)
	require.Equal(t, "ten-reasons-to-like-go", post.Slug)
	require.Equal(t, blogs.StatusDraft, post.Status)
}

func TestCreateSlugCollision(t *testing.T) {
	repo := newStubRepo()
	service := newTestService(t, repo)

	_, err := service.Create(context.Background(), blogs.CreateInput{Title: "Same Title", Body: "a", AuthorID: 1})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), blogs.CreateInput{Title: "Same Title", Body: "b", AuthorID: 1})
	require.ErrorIs(t, err, blogs.ErrSlugTaken)
}

func TestGetHidesDraftsFromAnonymous(t *testing.T) {
	repo := newStubRepo()
	repo.posts[1] = &blogs.Post{ID: 1, Title: "draft", Slug: "draft", Body: "b", Status: blogs.StatusDraft, AuthorID: 1}
	service := newTestService(t, repo)

	_, err := service.Get(context.Background(), "draft", false)
	require.ErrorIs(t, err, shared.ErrNotFound)

	post, err := service.Get(context.Background(), "draft", true)
	require.NoError(t, err)
	require.Equal(t, int64(1), post.ID)
}
