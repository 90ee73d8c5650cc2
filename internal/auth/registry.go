package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moviecatalog/moviecatalog/internal/db/models"
)

// Registry persists roles, permissions and the grants between them.
type Registry struct {
	db *gorm.DB
}

// RoleInput holds the fields of a new custom role.
type RoleInput struct {
	Name          string
	DisplayName   string
	Description   string
	PermissionIDs []uint
}

// RoleUpdate holds the editable fields of a custom role.
// A nil PermissionIDs leaves the grants untouched; a non-nil slice replaces them.
type RoleUpdate struct {
	DisplayName   string
	Description   string
	PermissionIDs *[]uint
}

// RoleSummary is a role with its grant and user counts.
type RoleSummary struct {
	models.Role
	PermissionCount int64 `json:"permission_count"`
	UserCount       int64 `json:"user_count"`
}

// RoleDetail is a role with its granted permissions.
type RoleDetail struct {
	models.Role
	Permissions []models.Permission `json:"permissions"`
}

// PermissionSummary is a permission with the number of roles granting it.
type PermissionSummary struct {
	models.Permission
	RoleCount int64 `json:"role_count"`
}

// NewRegistry creates a new role/permission registry.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// SeedDefaults creates the system roles, the permission catalog and their grants,
// then assigns roles to accounts that only carry a legacy tag.
// It does nothing and returns false when any role already exists.
func (r *Registry) SeedDefaults(ctx context.Context) (bool, error) {
	seeded := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count roles: %w", err)
		}

		if count > 0 {
			return nil
		}

		permIDs := make(map[string]uint, len(Catalog))

		for _, def := range Catalog {
			perm := models.Permission{
				Name:        def.Name,
				DisplayName: def.DisplayName,
				Module:      def.Module,
				Description: def.Description,
			}
			if err := tx.Create(&perm).Error; err != nil {
				return fmt.Errorf("failed to create permission %s: %w", def.Name, err)
			}

			permIDs[def.Name] = perm.ID
		}

		roleIDs := make(map[string]uint, len(SystemRoles))

		for _, def := range SystemRoles {
			role := models.Role{
				Name:        def.Name,
				DisplayName: def.DisplayName,
				Description: def.Description,
				IsSystem:    true,
			}
			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to create role %s: %w", def.Name, err)
			}

			roleIDs[def.Name] = role.ID

			grants := def.Grants
			if grants == nil {
				grants = make([]string, 0, len(Catalog))
				for _, p := range Catalog {
					grants = append(grants, p.Name)
				}
			}

			ids := make([]uint, 0, len(grants))
			for _, name := range grants {
				ids = append(ids, permIDs[name])
			}

			if err := insertGrants(tx, role.ID, ids); err != nil {
				return err
			}
		}

		if err := migrateLegacyUsers(tx, roleIDs); err != nil {
			return err
		}

		seeded = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return seeded, nil
}

// migrateLegacyUsers maps legacy tags onto roles without touching existing assignments.
func migrateLegacyUsers(tx *gorm.DB, roleIDs map[string]uint) error {
	mapping := map[models.LegacyRole]string{
		models.LegacyRoleAdmin: RoleSuperAdmin,
		models.LegacyRoleUser:  RoleViewer,
	}

	for legacy, roleName := range mapping {
		err := tx.Model(&models.User{}).
			Where("role = ? AND role_id IS NULL", legacy).
			UpdateColumn("role_id", roleIDs[roleName]).Error
		if err != nil {
			return fmt.Errorf("failed to migrate %s users: %w", legacy, err)
		}
	}

	return nil
}

// ListRoles returns all roles with their permission and user counts.
func (r *Registry) ListRoles(ctx context.Context) ([]RoleSummary, error) {
	var roles []RoleSummary

	err := r.db.WithContext(ctx).
		Model(&models.Role{}).
		Select("roles.*, " +
			"(SELECT COUNT(*) FROM role_permissions rp WHERE rp.role_id = roles.id) AS permission_count, " +
			"(SELECT COUNT(*) FROM users u WHERE u.role_id = roles.id) AS user_count").
		Order("roles.id").
		Scan(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// GetRole returns a role and its granted permissions.
func (r *Registry) GetRole(ctx context.Context, id uint) (*RoleDetail, error) {
	role, err := findRole(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	perms := make([]models.Permission, 0)

	err = r.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", id).
		Order("permissions.id").
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	return &RoleDetail{Role: *role, Permissions: perms}, nil
}

// GetRolePermissions returns the sorted permission names granted to a role.
func (r *Registry) GetRolePermissions(ctx context.Context, roleID uint) ([]string, error) {
	if _, err := findRole(r.db.WithContext(ctx), roleID); err != nil {
		return nil, err
	}

	return rolePermissionNames(r.db.WithContext(ctx), roleID)
}

// CreateRole creates a custom role and grants it the given permissions.
func (r *Registry) CreateRole(ctx context.Context, in RoleInput) (*models.Role, error) {
	name := strings.TrimSpace(in.Name)
	if IsSystemRoleName(name) {
		return nil, ErrSystemRoleProtected
	}

	role := models.Role{
		Name:        name,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Description: strings.TrimSpace(in.Description),
		IsSystem:    false,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role name: %w", err)
		}

		if count > 0 {
			return ErrRoleNameExists
		}

		if err := tx.Create(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrRoleNameExists
			}

			return fmt.Errorf("failed to create role: %w", err)
		}

		return replaceGrants(tx, role.ID, in.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// UpdateRole edits a custom role and, when requested, replaces its grants.
func (r *Registry) UpdateRole(ctx context.Context, id uint, in RoleUpdate) (*models.Role, error) {
	var role *models.Role

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		role, err = findEditableRole(tx, id)
		if err != nil {
			return err
		}

		role.DisplayName = strings.TrimSpace(in.DisplayName)
		role.Description = strings.TrimSpace(in.Description)

		err = tx.Model(role).Updates(map[string]any{
			"display_name": role.DisplayName,
			"description":  role.Description,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		if in.PermissionIDs == nil {
			return nil
		}

		return replaceGrants(tx, id, *in.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// AssignPermissions replaces the whole grant set of a custom role.
// The old grants are removed and the new ones inserted in one transaction,
// so concurrent readers see either the old or the new set.
func (r *Registry) AssignPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findEditableRole(tx, roleID); err != nil {
			return err
		}

		return replaceGrants(tx, roleID, permissionIDs)
	})
}

// DeleteRole deletes a custom role that no user references.
func (r *Registry) DeleteRole(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findEditableRole(tx, id); err != nil {
			return err
		}

		res := tx.Exec(
			"DELETE FROM roles WHERE id = ? AND is_system = ? "+
				"AND NOT EXISTS (SELECT 1 FROM users WHERE users.role_id = roles.id)",
			id, false,
		)
		if res.Error != nil {
			return fmt.Errorf("failed to delete role: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			var users int64
			if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
				return fmt.Errorf("failed to count role users: %w", err)
			}

			return fmt.Errorf("%w: %d users assigned", ErrRoleInUse, users)
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to delete role grants: %w", err)
		}

		return nil
	})
}

// ListPermissions returns the permission catalog ordered by module.
func (r *Registry) ListPermissions(ctx context.Context) ([]PermissionSummary, error) {
	var perms []PermissionSummary

	err := r.db.WithContext(ctx).
		Model(&models.Permission{}).
		Select("permissions.*, " +
			"(SELECT COUNT(*) FROM role_permissions rp WHERE rp.permission_id = permissions.id) AS role_count").
		Order("permissions.module, permissions.id").
		Scan(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return perms, nil
}

func findRole(tx *gorm.DB, id uint) (*models.Role, error) {
	var role models.Role

	err := tx.First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

func findEditableRole(tx *gorm.DB, id uint) (*models.Role, error) {
	role, err := findRole(tx, id)
	if err != nil {
		return nil, err
	}

	if role.IsSystem {
		return nil, ErrSystemRoleProtected
	}

	return role, nil
}

// replaceGrants deletes every grant of the role and inserts the given set.
func replaceGrants(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	ids := uniqueIDs(permissionIDs)

	if len(ids) > 0 {
		var known int64
		if err := tx.Model(&models.Permission{}).Where("id IN ?", ids).Count(&known).Error; err != nil {
			return fmt.Errorf("failed to check permissions: %w", err)
		}

		if known != int64(len(ids)) {
			return ErrUnknownPermission
		}
	}

	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return fmt.Errorf("failed to delete grants: %w", err)
	}

	return insertGrants(tx, roleID, ids)
}

func insertGrants(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	grants := make([]models.RolePermission, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: id})
	}

	if err := tx.Omit(clause.Associations).Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to insert grants: %w", err)
	}

	return nil
}

func rolePermissionNames(tx *gorm.DB, roleID uint) ([]string, error) {
	names := make([]string, 0)

	err := tx.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	sort.Strings(names)

	return names, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
