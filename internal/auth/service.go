package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

// Service evaluates permissions. Every call reads the user's current role and
// grants from the database, so role changes apply on the next request.
type Service struct {
	db *gorm.DB
}

// RoleRef is the resolved role of a user, nil fields when the user has none.
type RoleRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// UserPermissions is the live authorization state of a user.
type UserPermissions struct {
	UserID       uint64   `json:"-"`
	Role         *RoleRef `json:"role"`
	Permissions  []string `json:"permissions"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
}

// userRoleRow is the result of the users/roles join.
type userRoleRow struct {
	UserID          uint64
	RoleID          *uint
	RoleName        *string
	RoleDisplayName *string
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authorize decides whether the user holds at least one of the permissions.
// It returns nil to allow, ErrUserNotFound, ErrNoRoleAssigned, a
// *PermissionDeniedError, or a storage error.
func (s *Service) Authorize(ctx context.Context, userID uint64, permissions ...string) error {
	err := s.authorize(ctx, userID, permissions)
	observeDecision(err)

	return err
}

func (s *Service) authorize(ctx context.Context, userID uint64, permissions []string) error {
	role, err := s.resolveRole(ctx, userID)
	if err != nil {
		return err
	}

	if IsSuperAdminRole(role.Name) {
		return nil
	}

	if len(permissions) == 0 {
		return &PermissionDeniedError{Required: permissions}
	}

	var count int64

	err = s.db.WithContext(ctx).Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.name IN ?", role.ID, permissions).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check role permission: %w", err)
	}

	if count == 0 {
		return &PermissionDeniedError{Required: append([]string(nil), permissions...)}
	}

	return nil
}

// HasPermission checks if a user has a specific permission.
// Denials of any kind yield false; only storage failures return an error.
func (s *Service) HasPermission(ctx context.Context, userID uint64, permission string) (bool, error) {
	return s.HasAnyPermission(ctx, userID, []string{permission})
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID uint64, permissions []string) (bool, error) {
	err := s.Authorize(ctx, userID, permissions...)

	switch {
	case err == nil:
		return true, nil
	case isDenial(err):
		return false, nil
	default:
		return false, err
	}
}

// GetUserPermissions returns the user's role and the flattened permission names.
// A super administrator receives the complete catalog.
func (s *Service) GetUserPermissions(ctx context.Context, userID uint64) (*UserPermissions, error) {
	row, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &UserPermissions{UserID: userID, Permissions: []string{}}

	if row.RoleID == nil {
		return out, nil
	}

	out.Role = &RoleRef{ID: *row.RoleID, Name: deref(row.RoleName), DisplayName: deref(row.RoleDisplayName)}
	out.IsSuperAdmin = IsSuperAdminRole(out.Role.Name)

	if out.IsSuperAdmin {
		names := make([]string, 0, len(Catalog))
		if err = s.db.WithContext(ctx).Model(&models.Permission{}).Order("id").
			Pluck("name", &names).Error; err != nil {
			return nil, fmt.Errorf("failed to list permissions: %w", err)
		}

		out.Permissions = names

		return out, nil
	}

	out.Permissions, err = rolePermissionNames(s.db.WithContext(ctx), *row.RoleID)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// AssignRoleToUser sets the user's role; a nil roleID clears it.
func (s *Service) AssignRoleToUser(ctx context.Context, userID uint64, roleID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if roleID != nil {
			if _, err := findRole(tx, *roleID); err != nil {
				return err
			}
		}

		res := tx.Model(&models.User{}).Where(whereID, userID).UpdateColumn("role_id", roleID)
		if res.Error != nil {
			return fmt.Errorf("failed to assign role: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			// no-op updates report zero rows on MySQL, so tell them apart from a missing user
			var count int64
			if err := tx.Model(&models.User{}).Where(whereID, userID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check user: %w", err)
			}

			if count == 0 {
				return ErrUserNotFound
			}
		}

		return nil
	})
}

// resolveRole returns the user's role or ErrUserNotFound / ErrNoRoleAssigned.
func (s *Service) resolveRole(ctx context.Context, userID uint64) (*RoleRef, error) {
	row, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	if row.RoleID == nil || row.RoleName == nil {
		return nil, ErrNoRoleAssigned
	}

	return &RoleRef{ID: *row.RoleID, Name: *row.RoleName, DisplayName: deref(row.RoleDisplayName)}, nil
}

func (s *Service) lookup(ctx context.Context, userID uint64) (*userRoleRow, error) {
	var row userRoleRow

	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id AS user_id, roles.id AS role_id, roles.name AS role_name, roles.display_name AS role_display_name").
		Joins("LEFT JOIN roles ON roles.id = users.role_id").
		Where("users.id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve user role: %w", err)
	}

	return &row, nil
}

func isDenial(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNoRoleAssigned) || errors.Is(err, ErrUserNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
