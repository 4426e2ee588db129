package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/meridian-cms/meridian-cms/internal/shared"
)

// Resolver turns a raw Authorization header into a principal: decode
// the bearer token, load the user, apply the status gate.
type Resolver struct {
	codec *Codec
	store Store
}

// NewResolver constructs a Resolver.
func NewResolver(codec *Codec, store Store) *Resolver {
	return &Resolver{codec: codec, store: store}
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" for missing headers and non-bearer schemes.
func BearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Resolve returns the authenticated principal, or nil without error
// when no usable credential is presented. This is the optional-auth
// path: anonymous callers are not a failure. Only unexpected store
// errors propagate.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (*User, error) {
	user, err := r.lookup(ctx, authorization)
	if err != nil {
		if errors.Is(err, ErrAuthenticationRequired) || errors.Is(err, ErrAccountNotActive) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// ResolveRequired is Resolve for endpoints that must reject anonymous
// callers: a missing or invalid credential is ErrAuthenticationRequired
// and a gated account is ErrAccountNotActive.
func (r *Resolver) ResolveRequired(ctx context.Context, authorization string) (*User, error) {
	return r.lookup(ctx, authorization)
}

func (r *Resolver) lookup(ctx context.Context, authorization string) (*User, error) {
	token := BearerToken(authorization)
	if token == "" {
		return nil, ErrAuthenticationRequired
	}
	claims, err := r.codec.Decode(token, true)
	if err != nil {
		return nil, ErrAuthenticationRequired
	}
	id, ok := claims.Subject()
	if !ok {
		return nil, ErrAuthenticationRequired
	}
	user, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAuthenticationRequired
		}
		return nil, err
	}
	if err := Admit(user); err != nil {
		return nil, err
	}
	return user, nil
}
