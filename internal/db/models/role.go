package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are named collections of permissions; every user references at most one role.
// The four seeded roles (super_admin, admin, editor, viewer) are system roles.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique machine name of the role (e.g., "super_admin", "editor").
	Name string `gorm:"unique;size:50;not null" json:"name"`
	// DisplayName is the human-readable name shown in the admin console.
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255" json:"description"`
	// IsSystem marks a seeded role that can neither be edited nor deleted.
	IsSystem bool `gorm:"default:false" json:"is_system"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
