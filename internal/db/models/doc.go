// Package models contains the gorm model definitions of the identity schema:
// users, roles, permissions and the role_permissions grant table.
package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
	}
}
