package auth

// Permission is a capability tag scoped to a resource and action.
type Permission string

// The closed set of permissions. Guards treat these as opaque tags; the
// enumeration exists so the matrix below can be spelled out once.
const (
	PermUserCreate Permission = "user:create"
	PermUserRead   Permission = "user:read"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"

	PermBlogCreate  Permission = "blog:create"
	PermBlogRead    Permission = "blog:read"
	PermBlogUpdate  Permission = "blog:update"
	PermBlogDelete  Permission = "blog:delete"
	PermBlogPublish Permission = "blog:publish"

	PermServiceCreate Permission = "service:create"
	PermServiceRead   Permission = "service:read"
	PermServiceUpdate Permission = "service:update"
	PermServiceDelete Permission = "service:delete"

	PermVideoCreate Permission = "video:create"
	PermVideoRead   Permission = "video:read"
	PermVideoUpdate Permission = "video:update"
	PermVideoDelete Permission = "video:delete"

	PermImageCreate Permission = "image:create"
	PermImageRead   Permission = "image:read"
	PermImageUpdate Permission = "image:update"
	PermImageDelete Permission = "image:delete"

	PermAdCreate Permission = "ad:create"
	PermAdRead   Permission = "ad:read"
	PermAdUpdate Permission = "ad:update"
	PermAdDelete Permission = "ad:delete"

	PermMediaUpload Permission = "media:upload"
	PermMediaDelete Permission = "media:delete"
)

// rolePermissions is the static role to permission table. It is built
// once at process start and read-only afterwards. Admin's superset is
// spelled out explicitly rather than derived; there is no inheritance
// between roles and no per-user grants.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermBlogCreate, PermBlogRead, PermBlogUpdate, PermBlogDelete, PermBlogPublish,
		PermServiceCreate, PermServiceRead, PermServiceUpdate, PermServiceDelete,
		PermVideoCreate, PermVideoRead, PermVideoUpdate, PermVideoDelete,
		PermImageCreate, PermImageRead, PermImageUpdate, PermImageDelete,
		PermAdCreate, PermAdRead, PermAdUpdate, PermAdDelete,
		PermMediaUpload, PermMediaDelete,
	},
	RoleEditor: {
		PermBlogCreate, PermBlogRead, PermBlogUpdate, PermBlogDelete, PermBlogPublish,
		PermServiceRead,
		PermVideoCreate, PermVideoRead, PermVideoUpdate, PermVideoDelete,
		PermImageCreate, PermImageRead, PermImageUpdate, PermImageDelete,
		PermMediaUpload,
	},
	RoleViewer: {
		PermBlogRead,
		PermServiceRead,
		PermVideoRead,
		PermImageRead,
		PermAdRead,
	},
	RoleUser: {
		PermBlogRead,
		PermServiceRead,
		PermVideoRead,
	},
}

// PermissionsFor returns the permissions granted to a role. Unknown
// roles get an empty set, never an error.
func PermissionsFor(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the subject's role grants the
// permission. A nil subject or an unparseable role reports false.
func HasPermission(s Subject, perm Permission) bool {
	if s == nil {
		return false
	}
	role, ok := s.SubjectRole()
	if !ok {
		return false
	}
	for _, granted := range rolePermissions[role] {
		if granted == perm {
			return true
		}
	}
	return false
}

// HasRole reports whether the subject carries exactly the given role.
func HasRole(s Subject, role Role) bool {
	if s == nil {
		return false
	}
	current, ok := s.SubjectRole()
	return ok && current == role
}
