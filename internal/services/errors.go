package services

import "errors"

// Pipeline service errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
	ErrFormRequired    = errors.New("access form not completed")
	ErrInvalidPage     = errors.New("invalid page")

	// Upload errors
	ErrInvalidSource  = errors.New("invalid source")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrUploadTooLarge = errors.New("upload too large")

	// Filter errors
	ErrInvalidSelection = errors.New("invalid selection")
)
