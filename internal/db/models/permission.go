package models

import "time"

// Permission represents a named capability scoped to a catalog module.
// Permissions are created once by the seeder and never edited through the
// application; only the grants that bind them to roles change.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique permission identifier in module:action format (e.g., "movie:edit").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// DisplayName is the human-readable label of the permission.
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	// Module is the catalog area this permission applies to (e.g., "movie", "review", "system").
	Module string `gorm:"size:50;not null;index" json:"module"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255" json:"description"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
