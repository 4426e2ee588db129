package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-cms/meridian-cms/internal/auth"
	"github.com/meridian-cms/meridian-cms/internal/shared"
)

type memStore struct {
	users   map[int64]*auth.User
	nextID  int64
	logins  map[int64]time.Time
	hashes  map[int64]string
	loginFn func(ctx context.Context, id int64, at time.Time) error
}

func newMemStore(users ...*auth.User) *memStore {
	s := &memStore{
		users:  make(map[int64]*auth.User),
		logins: make(map[int64]time.Time),
		hashes: make(map[int64]string),
		nextID: 1,
	}
	for _, u := range users {
		s.users[u.ID] = u
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}
	return s
}

func (s *memStore) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) FindByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == identifier || u.Username == identifier {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, auth.ErrDuplicateIdentifier
		}
	}
	created := *user
	created.ID = s.nextID
	s.nextID++
	s.users[created.ID] = &created
	return &created, nil
}

func (s *memStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	s.hashes[id] = passwordHash
	return nil
}

func (s *memStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	if s.loginFn != nil {
		return s.loginFn(ctx, id, at)
	}
	s.logins[id] = at
	return nil
}

type memMailer struct {
	sent []string
}

func (m *memMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.sent = append(m.sent, token)
	return nil
}

func activeUser(t *testing.T, id int64, username, password string, role auth.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &auth.User{
		ID:           id,
		Email:        username + "@example.com",
		Username:     username,
		Role:         role,
		Status:       auth.StatusActive,
		PasswordHash: hash,
	}
}

func newService(store auth.Store, mailer auth.ResetMailer) (*auth.Service, *auth.Codec) {
	codec := testCodec(nil)
	return auth.NewService(slog.Default(), store, codec, mailer), codec
}

func TestLoginIssuesDecodableTokenPair(t *testing.T) {
	alice := activeUser(t, 10, "alice", "s3cret-pass", auth.RoleEditor)
	store := newMemStore(alice)
	service, codec := newService(store, nil)

	user, pair, err := service.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	for _, raw := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := codec.Decode(raw, true)
		require.NoError(t, err)
		id, ok := claims.Subject()
		require.True(t, ok)
		require.Equal(t, alice.ID, id)
	}

	// Login also stamps last login, best effort.
	require.Contains(t, store.logins, alice.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemStore(activeUser(t, 1, "alice", "right-password", auth.RoleUser))
	service, _ := newService(store, nil)

	_, _, err := service.Login(context.Background(), "alice", "wrong-password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownIdentifierMatchesWrongPassword(t *testing.T) {
	store := newMemStore()
	service, _ := newService(store, nil)

	// Unknown identifier and wrong password produce the same failure.
	_, _, err := service.Login(context.Background(), "nobody", "whatever-pass")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginSuspendedAccount(t *testing.T) {
	bob := activeUser(t, 2, "bob", "bob-password", auth.RoleUser)
	bob.Status = auth.StatusSuspended
	store := newMemStore(bob)
	service, _ := newService(store, nil)

	_, pair, err := service.Login(context.Background(), "bob", "bob-password")
	require.ErrorIs(t, err, auth.ErrAccountNotActive)
	require.Nil(t, pair)
}

func TestLoginSurvivesRecordLoginFailure(t *testing.T) {
	alice := activeUser(t, 3, "alice", "s3cret-pass", auth.RoleAdmin)
	store := newMemStore(alice)
	store.loginFn = func(ctx context.Context, id int64, at time.Time) error {
		return context.DeadlineExceeded
	}
	service, _ := newService(store, nil)

	_, pair, err := service.Login(context.Background(), "alice", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	alice := activeUser(t, 4, "alice", "s3cret-pass", auth.RoleEditor)
	store := newMemStore(alice)
	service, codec := newService(store, nil)

	access, err := codec.IssueAccess(alice.ID, alice.Role)
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), access)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	alice := activeUser(t, 5, "alice", "s3cret-pass", auth.RoleEditor)
	store := newMemStore(alice)
	service, codec := newService(store, nil)

	refresh, err := codec.IssueRefresh(alice.ID, alice.Role)
	require.NoError(t, err)

	access, err := service.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := codec.Decode(access, true)
	require.NoError(t, err)
	require.Equal(t, auth.TokenAccess, claims.TokenType())
}

func TestRefreshGatedAccount(t *testing.T) {
	bob := activeUser(t, 6, "bob", "bob-password", auth.RoleUser)
	store := newMemStore(bob)
	service, codec := newService(store, nil)

	refresh, err := codec.IssueRefresh(bob.ID, bob.Role)
	require.NoError(t, err)

	bob.Status = auth.StatusInactive
	_, err = service.Refresh(context.Background(), refresh)
	require.ErrorIs(t, err, auth.ErrAccountNotActive)
}

func TestRegisterDuplicateIdentifier(t *testing.T) {
	store := newMemStore(activeUser(t, 7, "alice", "s3cret-pass", auth.RoleViewer))
	service, _ := newService(store, nil)

	_, _, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "new-password",
	})
	require.ErrorIs(t, err, auth.ErrDuplicateIdentifier)
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	store := newMemStore()
	service, codec := newService(store, nil)

	user, pair, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "carol@example.com",
		Username: "carol",
		Password: "carol-password",
	})
	require.NoError(t, err)
	require.Equal(t, auth.RoleViewer, user.Role)
	require.Equal(t, auth.StatusActive, user.Status)

	claims, err := codec.Decode(pair.AccessToken, true)
	require.NoError(t, err)
	role, ok := claims.SubjectRole()
	require.True(t, ok)
	require.Equal(t, auth.RoleViewer, role)
}

func TestResetRequestIsSuccessShapedForUnknownIdentifier(t *testing.T) {
	store := newMemStore()
	mailer := &memMailer{}
	service, _ := newService(store, mailer)

	require.NoError(t, service.RequestPasswordReset(context.Background(), "ghost"))
	require.Empty(t, mailer.sent)
}

func TestResetRequestDeliversToken(t *testing.T) {
	alice := activeUser(t, 8, "alice", "s3cret-pass", auth.RoleUser)
	store := newMemStore(alice)
	mailer := &memMailer{}
	service, codec := newService(store, mailer)

	require.NoError(t, service.RequestPasswordReset(context.Background(), "alice"))
	require.Len(t, mailer.sent, 1)

	claims, err := codec.Decode(mailer.sent[0], true)
	require.NoError(t, err)
	require.Equal(t, auth.PurposePasswordReset, claims.Purpose())
}

func TestConsumeResetRejectsAccessToken(t *testing.T) {
	alice := activeUser(t, 9, "alice", "s3cret-pass", auth.RoleUser)
	store := newMemStore(alice)
	service, codec := newService(store, nil)

	// A well signed, unexpired access token has no purpose claim and
	// must not reset anything.
	access, err := codec.IssueAccess(alice.ID, alice.Role)
	require.NoError(t, err)

	err = service.ConsumePasswordReset(context.Background(), access, "brand-new-pass")
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestConsumeResetUpdatesPassword(t *testing.T) {
	alice := activeUser(t, 11, "alice", "old-password1", auth.RoleUser)
	store := newMemStore(alice)
	service, codec := newService(store, nil)

	token, err := codec.IssuePasswordReset(alice.ID)
	require.NoError(t, err)

	require.NoError(t, service.ConsumePasswordReset(context.Background(), token, "new-password1"))
	require.True(t, auth.VerifyPassword("new-password1", store.users[alice.ID].PasswordHash))
	require.False(t, auth.VerifyPassword("old-password1", store.users[alice.ID].PasswordHash))
}

func TestConsumeResetGarbageToken(t *testing.T) {
	store := newMemStore()
	service, _ := newService(store, nil)

	err := service.ConsumePasswordReset(context.Background(), "garbage", "new-password1")
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)
}
