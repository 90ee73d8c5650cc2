package role

import "github.com/moviecatalog/moviecatalog/internal/auth"

type createInput struct {
	Name        string `json:"name"         validate:"required,min=2,max=50,rolename"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Description string `json:"description"  validate:"max=255"`
	Permissions []uint `json:"permissions"`
}

type updateInput struct {
	DisplayName string  `json:"display_name" validate:"required,max=100"`
	Description string  `json:"description"  validate:"max=255"`
	Permissions *[]uint `json:"permissions"`
}

type grantInput struct {
	Permissions []uint `json:"permissions" validate:"required"`
}

// PermissionCatalog is the body of GET /api/admin/permissions.
type PermissionCatalog struct {
	Permissions []auth.PermissionSummary            `json:"permissions"`
	Grouped     map[string][]auth.PermissionSummary `json:"grouped"`
}
