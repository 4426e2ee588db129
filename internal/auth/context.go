package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in the context.
func ContextWithPrincipal(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext extracts the principal, nil when anonymous.
func PrincipalFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(principalContextKey{}).(*User)
	return user
}
