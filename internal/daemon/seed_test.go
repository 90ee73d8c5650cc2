package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

func memoryConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		DB:      config.DB{GormEngine: config.EngineSQLite, LogLevel: "silent"},
	}
}

func openMemoryDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))

	return db
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		bootstrap config.Bootstrap
		preUsers  int
		wantAdmin bool
	}{
		{name: "no bootstrap configured"},
		{
			name:      "bootstrap admin created",
			bootstrap: config.Bootstrap{AdminEmail: "root@example.com", AdminPassword: "root-pw"},
			wantAdmin: true,
		},
		{
			name:      "users already present",
			bootstrap: config.Bootstrap{AdminEmail: "root@example.com", AdminPassword: "root-pw"},
			preUsers:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.Bootstrap = tt.bootstrap
			db := openMemoryDB(t, cfg)

			for i := range tt.preUsers {
				u := models.User{
					Username:   "existing" + string(rune('a'+i)),
					Email:      string(rune('a'+i)) + "@example.com",
					Password:   "x",
					LegacyRole: models.LegacyRoleUser,
				}
				require.NoError(t, db.Create(&u).Error)
			}

			require.NoError(t, Seed(ctx, cfg, db))
			// a restart seeds nothing new
			require.NoError(t, Seed(ctx, cfg, db))

			var roles int64
			require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
			assert.Equal(t, int64(len(auth.SystemRoles)), roles)

			var admin models.User

			err := db.Where("email = ?", "root@example.com").First(&admin).Error
			if !tt.wantAdmin {
				require.ErrorIs(t, err, gorm.ErrRecordNotFound)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "admin", admin.Username)
			assert.Equal(t, models.LegacyRoleAdmin, admin.LegacyRole)
			assert.True(t, admin.VerifyPassword("root-pw"))

			perms, err := auth.NewService(db).GetUserPermissions(ctx, admin.ID)
			require.NoError(t, err)
			assert.True(t, perms.IsSuperAdmin)
		})
	}
}
