package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-cms/meridian-cms/internal/auth"
)

func TestAdminIsSupersetOfEveryRole(t *testing.T) {
	admin := &auth.User{ID: 1, Role: auth.RoleAdmin, Status: auth.StatusActive}
	for _, role := range []auth.Role{auth.RoleEditor, auth.RoleViewer, auth.RoleUser} {
		for _, perm := range auth.PermissionsFor(role) {
			require.True(t, auth.HasPermission(admin, perm), "admin missing %s granted to %s", perm, role)
		}
	}
}

func TestUserRoleHasNoAdPermissions(t *testing.T) {
	user := &auth.User{ID: 2, Role: auth.RoleUser}
	require.False(t, auth.HasPermission(user, auth.PermAdDelete))
	require.False(t, auth.HasPermission(user, auth.PermAdCreate))
	require.True(t, auth.HasPermission(user, auth.PermBlogRead))
}

func TestPermissionsForUnknownRole(t *testing.T) {
	require.Empty(t, auth.PermissionsFor(auth.Role("superhero")))
}

func TestHasPermissionAgainstRawClaims(t *testing.T) {
	// Permission checks work directly on decoded claims, with no user
	// store round trip.
	require.True(t, auth.HasPermission(auth.Claims{"role": "editor"}, auth.PermBlogPublish))
	require.False(t, auth.HasPermission(auth.Claims{"role": "viewer"}, auth.PermBlogPublish))
	require.False(t, auth.HasPermission(auth.Claims{"role": "bogus"}, auth.PermBlogRead))
	require.False(t, auth.HasPermission(auth.Claims{}, auth.PermBlogRead))
}

func TestHasRoleExactMatch(t *testing.T) {
	editor := &auth.User{Role: auth.RoleEditor}
	require.True(t, auth.HasRole(editor, auth.RoleEditor))
	require.False(t, auth.HasRole(editor, auth.RoleAdmin))
	require.True(t, auth.HasRole(auth.Claims{"role": "admin"}, auth.RoleAdmin))
	require.False(t, auth.HasRole(nil, auth.RoleAdmin))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("editor")
	require.True(t, ok)
	require.Equal(t, auth.RoleEditor, role)

	_, ok = auth.ParseRole("root")
	require.False(t, ok)
}
