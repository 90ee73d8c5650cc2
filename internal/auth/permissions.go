package auth

// Permission constants define the available permissions in the system.
// Names follow the module:action pattern used by the admin console.
const (
	// PermMovieView allows viewing movies in the admin console.
	PermMovieView = "movie:view"
	// PermMovieCreate allows adding movies manually.
	PermMovieCreate = "movie:create"
	// PermMovieEdit allows editing movie metadata and banner/trending flags.
	PermMovieEdit = "movie:edit"
	// PermMovieDelete allows deleting movies.
	PermMovieDelete = "movie:delete"
	// PermMovieSync allows triggering the metadata provider sync.
	PermMovieSync = "movie:sync"

	// PermGenreView allows viewing genres.
	PermGenreView = "genre:view"
	// PermGenreCreate allows creating genres.
	PermGenreCreate = "genre:create"
	// PermGenreEdit allows editing genres.
	PermGenreEdit = "genre:edit"
	// PermGenreDelete allows deleting genres.
	PermGenreDelete = "genre:delete"

	// PermUserView allows listing user accounts.
	PermUserView = "user:view"
	// PermUserEdit allows editing user accounts.
	PermUserEdit = "user:edit"
	// PermUserDelete allows deleting user accounts.
	PermUserDelete = "user:delete"

	// PermReviewView allows viewing reviews.
	PermReviewView = "review:view"
	// PermReviewAudit allows approving or rejecting reviews.
	PermReviewAudit = "review:audit"
	// PermReviewDelete allows deleting reviews.
	PermReviewDelete = "review:delete"

	// PermSystemSettings allows changing application settings.
	PermSystemSettings = "system:settings"
	// PermSystemLogs allows viewing operation logs.
	PermSystemLogs = "system:logs"
	// PermSystemRole allows managing roles, grants and role assignments.
	PermSystemRole = "system:role"
)

// System role machine names.
const (
	// RoleSuperAdmin is the only role that bypasses permission checks.
	RoleSuperAdmin = "super_admin"
	// RoleAdmin manages catalog content, reviews and users.
	RoleAdmin = "admin"
	// RoleEditor manages movies and reviews.
	RoleEditor = "editor"
	// RoleViewer has read-only access.
	RoleViewer = "viewer"
)

// PermissionDef describes one entry of the seeded permission catalog.
type PermissionDef struct {
	Name        string
	DisplayName string
	Module      string
	Description string
}

// RoleDef describes one seeded system role and its grants.
type RoleDef struct {
	Name        string
	DisplayName string
	Description string
	// Grants lists permission names; nil means every permission in the catalog.
	Grants []string
}

// Catalog is the fixed permission catalog created on first start.
var Catalog = []PermissionDef{ //nolint:gochecknoglobals
	{PermMovieView, "View movies", "movie", "List and inspect movies"},
	{PermMovieCreate, "Create movies", "movie", "Add movies manually"},
	{PermMovieEdit, "Edit movies", "movie", "Edit movie metadata and flags"},
	{PermMovieDelete, "Delete movies", "movie", "Remove movies from the catalog"},
	{PermMovieSync, "Sync movies", "movie", "Pull movies from the metadata provider"},
	{PermGenreView, "View genres", "genre", "List genres"},
	{PermGenreCreate, "Create genres", "genre", "Add genres"},
	{PermGenreEdit, "Edit genres", "genre", "Rename genres"},
	{PermGenreDelete, "Delete genres", "genre", "Remove genres"},
	{PermUserView, "View users", "user", "List user accounts"},
	{PermUserEdit, "Edit users", "user", "Edit user accounts"},
	{PermUserDelete, "Delete users", "user", "Delete user accounts"},
	{PermReviewView, "View reviews", "review", "List reviews"},
	{PermReviewAudit, "Audit reviews", "review", "Approve or reject reviews"},
	{PermReviewDelete, "Delete reviews", "review", "Remove reviews"},
	{PermSystemSettings, "System settings", "system", "Change application settings"},
	{PermSystemLogs, "View logs", "system", "Read operation logs"},
	{PermSystemRole, "Role management", "system", "Manage roles, grants and assignments"},
}

// SystemRoles are the seeded, non-editable roles in creation order.
var SystemRoles = []RoleDef{ //nolint:gochecknoglobals
	{
		Name:        RoleSuperAdmin,
		DisplayName: "Super Administrator",
		Description: "Has every permission",
		Grants:      nil,
	},
	{
		Name:        RoleAdmin,
		DisplayName: "Administrator",
		Description: "Manages movies, reviews and users",
		Grants: []string{
			PermMovieView, PermMovieCreate, PermMovieEdit, PermMovieDelete, PermMovieSync,
			PermGenreView, PermGenreCreate, PermGenreEdit, PermGenreDelete,
			PermUserView, PermUserEdit,
			PermReviewView, PermReviewAudit, PermReviewDelete,
			PermSystemLogs,
		},
	},
	{
		Name:        RoleEditor,
		DisplayName: "Editor",
		Description: "Manages movies and reviews",
		Grants: []string{
			PermMovieView, PermMovieCreate, PermMovieEdit,
			PermGenreView,
			PermReviewView, PermReviewAudit,
		},
	},
	{
		Name:        RoleViewer,
		DisplayName: "Viewer",
		Description: "Read-only access",
		Grants: []string{
			PermMovieView, PermGenreView, PermUserView, PermReviewView, PermSystemLogs,
		},
	},
}

// IsSystemRoleName reports whether name is reserved for one of the seeded roles.
func IsSystemRoleName(name string) bool {
	for _, r := range SystemRoles {
		if r.Name == name {
			return true
		}
	}

	return false
}

// IsSuperAdminRole reports whether the role name is the distinguished super administrator.
// Matching is by name, never by role ID.
func IsSuperAdminRole(name string) bool {
	return name == RoleSuperAdmin
}
