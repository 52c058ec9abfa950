package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested remote entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrServerOffline indicates the remote API is unreachable
	ErrServerOffline = errors.New("remote api is unreachable")

	// ErrRateLimited indicates the remote API kept answering 429
	ErrRateLimited = errors.New("rate limited by remote api")

	// ErrUnknownKind indicates an unsupported favorite or content kind
	ErrUnknownKind = errors.New("unknown kind")

	// ErrStoreClosed indicates use of a closed key-value store
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidSettings indicates a settings value outside its allowed range
	ErrInvalidSettings = errors.New("invalid settings")
)
