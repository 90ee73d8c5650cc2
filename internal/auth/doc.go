// Package auth provides authentication and authorization for the movie catalog.
//
// # Credentials
//
// LocalProvider registers accounts and checks email/password logins against
// the users table. Passwords are stored as Argon2id hashes; bcrypt hashes
// imported from older data still verify.
//
// # Tokens
//
// TokenManager issues and verifies HS256 bearer tokens carrying the user ID
// and the legacy role tag. Verification tells expired tokens apart from
// forged or malformed ones.
//
// # Roles and permissions
//
// Registry owns roles, the permission catalog and the grants between them.
// System roles (super_admin, admin, editor, viewer) are seeded once and can
// not be edited, re-granted or deleted. Custom roles can, as long as no user
// is assigned when deleting.
//
// # Authorization
//
// Service resolves the caller's role from the database on every call, so a
// role change or re-grant applies to the next request:
//   - a user without a role gets ErrNoRoleAssigned
//   - super_admin, matched by name, is allowed everything
//   - any other role is allowed when it holds at least one required permission
//   - a denial is a *PermissionDeniedError naming what was required
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	ok, err := authService.HasPermission(ctx, userID, auth.PermMovieEdit)
//
//	app.Get("/api/admin/users",
//	    authenticate,
//	    auth.RequireAnyPermission(authService, auth.PermUserView, auth.PermSystemRole),
//	    handler,
//	)
package auth
