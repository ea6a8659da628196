package domain

import "errors"

// Error classes shared by the stores, services and handlers.
// Adapters wrap the underlying cause so errors.Is matches both.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrRemote             = errors.New("remote backend error")
)
