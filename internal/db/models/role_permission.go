package models

// RolePermission represents the many-to-many relationship between roles and permissions.
// Each row is a single grant. A role's grant set is always replaced as a whole,
// never merged. Deleting either side removes the grant (CASCADE).
type RolePermission struct {
	// RoleID is the ID of the role in this grant.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false"`
	// PermissionID is the ID of the permission in this grant.
	PermissionID uint `gorm:"primaryKey;column:permission_id;autoIncrement:false"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	// Permission is the associated permission (loaded via foreign key).
	Permission Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RolePermission model.
// This overrides GORM's default pluralized table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
