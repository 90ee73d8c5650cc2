package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

// Seed creates the default roles and permission catalog, then the bootstrap
// administrator when one is configured and the users table is empty.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	seeded, err := auth.NewRegistry(db).SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if seeded {
		log.Info().Int("roles", len(auth.SystemRoles)).Int("permissions", len(auth.Catalog)).
			Msg("seeded default roles and permissions")
	}

	if !cfg.Bootstrap.Enabled() {
		return nil
	}

	return seedAdmin(ctx, cfg.Bootstrap, db)
}

func seedAdmin(ctx context.Context, b config.Bootstrap, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}

		if count > 0 {
			return nil
		}

		var role models.Role

		err := tx.Where("name = ?", auth.RoleSuperAdmin).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("bootstrap admin: %w", auth.ErrRoleNotFound)
		}

		if err != nil {
			return fmt.Errorf("failed to load %s role: %w", auth.RoleSuperAdmin, err)
		}

		hashed, err := models.HashPassword(b.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash bootstrap password: %w", err)
		}

		username := b.AdminUsername
		if username == "" {
			username = "admin"
		}

		admin := models.User{
			Username:   username,
			Email:      b.AdminEmail,
			Password:   hashed,
			LegacyRole: models.LegacyRoleAdmin,
			RoleID:     &role.ID,
		}

		if err = tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create bootstrap admin: %w", err)
		}

		log.Info().Str("username", admin.Username).Str("email", admin.Email).Msg("created bootstrap administrator")

		return nil
	})
}
