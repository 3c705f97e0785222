// Package storage provides blob storage for listing photos. It defines a System
// interface for storage operations with filesystem, S3-compatible, and in-memory
// implementations selected by configuration.
package storage

import "errors"

// Storage errors returned by System implementations.
var (
	// ErrNotFound indicates the requested key does not exist in storage.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates insufficient permissions to access the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates the key is empty or escapes the storage root.
	ErrInvalidKey = errors.New("storage: invalid key")
)
