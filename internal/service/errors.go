package service

import "errors"

// Error kinds surfaced by core operations. Handlers map these to HTTP
// statuses; everything else is an internal error.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUploadFailed    = errors.New("upload failed")
)
