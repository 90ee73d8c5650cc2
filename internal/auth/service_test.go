package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeSuperAdmin(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	role := roleByName(t, db, RoleSuperAdmin)
	u := createUser(t, db, "root", &role.ID)

	for _, p := range Catalog {
		require.NoError(t, svc.Authorize(ctx, u.ID, p.Name))
	}

	// names outside the catalog too
	require.NoError(t, svc.Authorize(ctx, u.ID, "movie:teleport"))
	require.NoError(t, svc.Authorize(ctx, u.ID))
}

func TestAuthorizeMatchesGrants(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	for _, def := range SystemRoles[1:] {
		t.Run(def.Name, func(t *testing.T) {
			role := roleByName(t, db, def.Name)
			u := createUser(t, db, "user_"+def.Name, &role.ID)

			granted := make(map[string]bool, len(def.Grants))
			for _, g := range def.Grants {
				granted[g] = true
			}

			for _, p := range Catalog {
				err := svc.Authorize(ctx, u.ID, p.Name)
				if granted[p.Name] {
					assert.NoError(t, err, p.Name)

					continue
				}

				assert.ErrorIs(t, err, ErrPermissionDenied, p.Name)
			}
		})
	}
}

func TestAuthorizeAnyOf(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	editor := roleByName(t, db, RoleEditor)
	u := createUser(t, db, "ed", &editor.ID)

	tests := []struct {
		name    string
		perms   []string
		allowed bool
	}{
		{"one held", []string{PermMovieEdit}, true},
		{"first held", []string{PermReviewAudit, PermUserView}, true},
		{"last held", []string{PermUserView, PermMovieCreate}, true},
		{"none held", []string{PermUserView, PermSystemRole}, false},
		{"empty list", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(ctx, u.ID, tt.perms...)
			if tt.allowed {
				require.NoError(t, err)

				return
			}

			var denied *PermissionDeniedError

			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.perms, denied.Required)
		})
	}
}

func TestAuthorizeNoRoleAndUnknownUser(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	u := createUser(t, db, "drifter", nil)

	err := svc.Authorize(ctx, u.ID, PermMovieView)
	require.ErrorIs(t, err, ErrNoRoleAssigned)
	assert.NotErrorIs(t, err, ErrPermissionDenied)

	err = svc.Authorize(ctx, 4242, PermMovieView)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

func TestAuthorizeFollowsRegrant(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)
	reg := NewRegistry(db)

	role := createRole(t, db, "moderator", PermReviewView)
	u := createUser(t, db, "mod", &role.ID)

	require.ErrorIs(t, svc.Authorize(ctx, u.ID, PermReviewDelete), ErrPermissionDenied)

	require.NoError(t, reg.AssignPermissions(ctx, role.ID, permissionIDs(t, db, PermReviewDelete)))
	require.NoError(t, svc.Authorize(ctx, u.ID, PermReviewDelete))
	require.ErrorIs(t, svc.Authorize(ctx, u.ID, PermReviewView), ErrPermissionDenied)

	viewer := roleByName(t, db, RoleViewer)
	require.NoError(t, svc.AssignRoleToUser(ctx, u.ID, &viewer.ID))
	require.NoError(t, svc.Authorize(ctx, u.ID, PermReviewView))
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	viewer := roleByName(t, db, RoleViewer)
	u := createUser(t, db, "vic", &viewer.ID)
	nobody := createUser(t, db, "nobody", nil)

	tests := []struct {
		name   string
		userID uint64
		perms  []string
		want   bool
	}{
		{"granted", u.ID, []string{PermMovieView}, true},
		{"not granted", u.ID, []string{PermMovieDelete}, false},
		{"any granted", u.ID, []string{PermMovieDelete, PermSystemLogs}, true},
		{"no role", nobody.ID, []string{PermMovieView}, false},
		{"unknown user", 777, []string{PermMovieView}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasAnyPermission(ctx, tt.userID, tt.perms)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if len(tt.perms) == 1 {
				single, err := svc.HasPermission(ctx, tt.userID, tt.perms[0])
				require.NoError(t, err)
				assert.Equal(t, tt.want, single)
			}
		})
	}
}

func TestGetUserPermissions(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	t.Run("super admin gets the catalog", func(t *testing.T) {
		role := roleByName(t, db, RoleSuperAdmin)
		u := createUser(t, db, "root", &role.ID)

		got, err := svc.GetUserPermissions(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.IsSuperAdmin)
		require.NotNil(t, got.Role)
		assert.Equal(t, "Super Administrator", got.Role.DisplayName)
		assert.Len(t, got.Permissions, len(Catalog))
	})

	t.Run("editor gets its grants", func(t *testing.T) {
		role := roleByName(t, db, RoleEditor)
		u := createUser(t, db, "ed", &role.ID)

		got, err := svc.GetUserPermissions(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, got.IsSuperAdmin)
		assert.Equal(t, []string{
			PermGenreView, PermMovieCreate, PermMovieEdit, PermMovieView, PermReviewAudit, PermReviewView,
		}, got.Permissions)
	})

	t.Run("no role", func(t *testing.T) {
		u := createUser(t, db, "lost", nil)

		got, err := svc.GetUserPermissions(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Role)
		assert.NotNil(t, got.Permissions)
		assert.Empty(t, got.Permissions)
		assert.False(t, got.IsSuperAdmin)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetUserPermissions(ctx, 31337)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAssignRoleToUser(t *testing.T) {
	ctx := context.Background()
	db := newSeededDB(t)
	svc := NewService(db)

	editor := roleByName(t, db, RoleEditor)
	u := createUser(t, db, "sam", nil)

	require.NoError(t, svc.AssignRoleToUser(ctx, u.ID, &editor.ID))
	// same role twice
	require.NoError(t, svc.AssignRoleToUser(ctx, u.ID, &editor.ID))

	got, err := svc.GetUserPermissions(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Role)
	assert.Equal(t, RoleEditor, got.Role.Name)

	missing := uint(9999)
	require.ErrorIs(t, svc.AssignRoleToUser(ctx, u.ID, &missing), ErrRoleNotFound)
	require.ErrorIs(t, svc.AssignRoleToUser(ctx, 9999, &editor.ID), ErrUserNotFound)

	require.NoError(t, svc.AssignRoleToUser(ctx, u.ID, nil))
	require.ErrorIs(t, svc.Authorize(ctx, u.ID, PermMovieView), ErrNoRoleAssigned)
}

func TestPermissionDeniedError(t *testing.T) {
	tests := []struct {
		name string
		err  *PermissionDeniedError
		want string
	}{
		{"single", &PermissionDeniedError{Required: []string{PermMovieEdit}}, "permission denied: movie:edit"},
		{
			"any of",
			&PermissionDeniedError{Required: []string{PermUserView, PermSystemRole}},
			"permission denied: requires one of [user:view, system:role]",
		},
		{"none", &PermissionDeniedError{}, "permission denied: requires one of []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrPermissionDenied)
		})
	}
}
