package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPrefix is the mount point of the JSON API.
	APIPrefix = "/api"

	// ParamID is the route parameter holding a numeric resource ID.
	ParamID = "id"

	// ErrNilDepsFatalLogMsg is used if the router or a required dependency is nil.
	ErrNilDepsFatalLogMsg = "router or handler dependencies are nil"
)
