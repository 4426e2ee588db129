package users

import (
	"context"
	"errors"

	"github.com/meridian-cms/meridian-cms/internal/auth"
)

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	List(ctx context.Context, offset, limit int) ([]User, int, error)
	UpdateRole(ctx context.Context, id int64, role auth.Role) error
	UpdateStatus(ctx context.Context, id int64, status auth.Status) error
}

// Service handles user management business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of users plus the total count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// ChangeRole reassigns an account's role.
func (s *Service) ChangeRole(ctx context.Context, id int64, role auth.Role) error {
	if _, ok := auth.ParseRole(string(role)); !ok {
		return errors.New("users: unknown role")
	}
	return s.repo.UpdateRole(ctx, id, role)
}

// ChangeStatus moves an account through its lifecycle. Reactivation is
// an explicit admin action, never implicit.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status auth.Status) error {
	switch status {
	case auth.StatusActive, auth.StatusInactive, auth.StatusSuspended:
		return s.repo.UpdateStatus(ctx, id, status)
	default:
		return errors.New("users: unknown status")
	}
}
