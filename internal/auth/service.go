package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// ResetMailer delivers password reset mail out of band. Delivery is
// best-effort; failures never surface to the requester.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// TokenPair is the result of a successful login or registration.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     Role
}

// Service wraps the credential and token flows the HTTP layer calls.
type Service struct {
	logger *slog.Logger
	store  Store
	codec  *Codec
	mailer ResetMailer
}

// NewService constructs a Service. The mailer may be nil, in which case
// reset tokens are issued but not delivered.
func NewService(logger *slog.Logger, store Store, codec *Codec, mailer ResetMailer) *Service {
	return &Service{logger: logger, store: store, codec: codec, mailer: mailer}
}

// Login validates the identifier and password and issues a token pair.
// Unknown identifiers and wrong passwords are indistinguishable to the
// caller; a gated account reports ErrAccountNotActive without tokens.
func (s *Service) Login(ctx context.Context, identifier, password string) (*User, *TokenPair, error) {
	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if err := Admit(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	// Best-effort; a failed stamp must not block the login.
	if err := s.store.RecordLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("record login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token. Access
// tokens are rejected here: the token_type claim must read refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Decode(refreshToken, true)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.TokenType() != TokenRefresh {
		return "", ErrInvalidToken
	}
	id, ok := claims.Subject()
	if !ok {
		return "", ErrInvalidToken
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if err := Admit(user); err != nil {
		return "", err
	}
	return s.codec.IssueAccess(user.ID, user.Role)
}

// Register creates a new account and issues a token pair. New accounts
// default to the viewer role and start active.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	role := input.Role
	if role == "" {
		role = RoleViewer
	}
	if _, ok := ParseRole(string(role)); !ok {
		role = RoleViewer
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.store.Create(ctx, &User{
		Email:        input.Email,
		Username:     input.Username,
		FullName:     input.FullName,
		Role:         role,
		Status:       StatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RequestPasswordReset issues a purpose-scoped reset token and hands it
// to the mailer. The outcome is success-shaped whether or not the
// identifier exists, so callers cannot probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, identifier string) error {
	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	token, err := s.codec.IssuePasswordReset(user.ID)
	if err != nil {
		s.logger.Error("issue reset token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil
	}
	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Warn("enqueue reset mail", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

// ConsumePasswordReset verifies the reset token and replaces the
// credential. The token must verify, be unexpired and carry the
// password_reset purpose; a plain access token fails here even when its
// signature is valid. Consumed tokens stay valid until natural expiry.
func (s *Service) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.Decode(token, true)
	if err != nil {
		return ErrInvalidResetToken
	}
	if claims.Purpose() != PurposePasswordReset {
		return ErrInvalidResetToken
	}
	id, ok := claims.Subject()
	if !ok {
		return ErrInvalidResetToken
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

func (s *Service) issuePair(user *User) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
