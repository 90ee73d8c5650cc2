package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

// newTestDB opens a private in-memory database with the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	// every connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// newSeededDB returns a migrated database with the default roles and catalog.
func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := newTestDB(t)

	seeded, err := NewRegistry(db).SeedDefaults(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)

	return db
}

// roleByName loads a role by machine name.
func roleByName(t *testing.T, db *gorm.DB, name string) models.Role {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)

	return role
}

// permissionIDs maps permission names to IDs.
func permissionIDs(t *testing.T, db *gorm.DB, names ...string) []uint {
	t.Helper()

	ids := make([]uint, 0, len(names))

	for _, name := range names {
		var p models.Permission
		require.NoError(t, db.Where("name = ?", name).First(&p).Error, name)

		ids = append(ids, p.ID)
	}

	return ids
}

// createUser inserts a user with an optional role.
func createUser(t *testing.T, db *gorm.DB, username string, roleID *uint) models.User {
	t.Helper()

	u := models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "x",
		LegacyRole: models.LegacyRoleUser,
		RoleID:     roleID,
	}
	require.NoError(t, db.Create(&u).Error)

	return u
}

// createRole inserts a custom role granted the named permissions.
func createRole(t *testing.T, db *gorm.DB, name string, perms ...string) *models.Role {
	t.Helper()

	role, err := NewRegistry(db).CreateRole(context.Background(), RoleInput{
		Name:          name,
		DisplayName:   name,
		PermissionIDs: permissionIDs(t, db, perms...),
	})
	require.NoError(t, err)

	return role
}
