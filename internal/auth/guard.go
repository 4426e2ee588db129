package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-cms/meridian-cms/internal/platform/httpx"
)

// Guard builds request-time access checks on top of the Resolver.
// Guards hold no per-request state and are safe to evaluate
// concurrently for independent requests.
type Guard struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// RequireAuth admits any authenticated, active principal.
func (g Guard) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Resolver.ResolveRequired(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				g.respond(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), user)))
		})
	}
}

// RequireRole admits only principals carrying exactly the given role.
func (g Guard) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Resolver.ResolveRequired(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				g.respond(w, err)
				return
			}
			if !HasRole(user, role) {
				g.respond(w, ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), user)))
		})
	}
}

// RequirePermission admits only principals whose role grants the
// permission. Anonymous callers fail authentication first, so the 401
// and 403 outcomes stay distinguishable.
func (g Guard) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Resolver.ResolveRequired(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				g.respond(w, err)
				return
			}
			if !HasPermission(user, perm) {
				g.respond(w, ErrInsufficientPermission)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), user)))
		})
	}
}

// OptionalAuth resolves a principal when one is presented and lets the
// request through either way. Handlers read the outcome from the
// context and decide how to treat anonymous callers.
func (g Guard) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if g.Logger != nil {
					g.Logger.Error("optional auth lookup", slog.Any("error", err))
				}
				user = nil
			}
			if user != nil {
				r = r.WithContext(ContextWithPrincipal(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g Guard) respond(w http.ResponseWriter, err error) {
	if g.Logger != nil && !isAuthError(err) {
		g.Logger.Error("guard check", slog.Any("error", err))
	}
	RespondError(w, err)
}

// RespondError maps the auth failure taxonomy to problem responses.
// Anything outside the taxonomy falls through to the generic mapper.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		httpx.Problem(w, http.StatusUnauthorized, "Authentication Required", "authentication required")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Invalid Credentials", "invalid credentials")
	case errors.Is(err, ErrInvalidToken):
		httpx.Problem(w, http.StatusUnauthorized, "Invalid Token", "token is invalid or expired")
	case errors.Is(err, ErrInvalidResetToken):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Reset Token", "reset token is invalid or expired")
	case errors.Is(err, ErrAccountNotActive):
		httpx.Problem(w, http.StatusBadRequest, "Account Not Active", "user account is not active")
	case errors.Is(err, ErrInsufficientRole):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
	case errors.Is(err, ErrInsufficientPermission):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
	case errors.Is(err, ErrDuplicateIdentifier):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "identifier already registered")
	default:
		httpx.RespondError(w, err)
	}
}

func isAuthError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidCredentials, ErrAccountNotActive, ErrDuplicateIdentifier,
		ErrInvalidToken, ErrInvalidResetToken, ErrAuthenticationRequired,
		ErrInsufficientRole, ErrInsufficientPermission,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
