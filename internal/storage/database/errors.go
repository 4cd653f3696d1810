package database

import "errors"

var (
	ErrDBClosed       = errors.New("database: closed")
	ErrKeyNotFound    = errors.New("database: key not found")
	ErrUnknownBatchOp = errors.New("database: unknown batch operation")

	// ErrInvalidBackend is returned by backend.Open for an unknown backend name.
	ErrInvalidBackend = errors.New("database: invalid backend")
)
