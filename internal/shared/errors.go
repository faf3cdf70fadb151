package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied indicates the caller cannot view the requested resource.
	ErrAccessDenied = errors.New("access denied")
	// ErrMissingCallerID occurs when a scoped role is used without an id.
	ErrMissingCallerID = errors.New("caller id required for scoped role")
	// ErrInvalidRole indicates an unknown caller role.
	ErrInvalidRole = errors.New("invalid caller role")
)
