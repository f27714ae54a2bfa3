package database

import "errors"

// Database configuration errors
var (
	ErrInvalidDatabasePath      = errors.New("invalid database path")
	ErrInvalidMaxConnections    = errors.New("invalid max connections")
	ErrInvalidConnectionTimeout = errors.New("invalid connection timeout")
	ErrInvalidSynchronousMode   = errors.New("invalid synchronous mode")
)

// Database operation errors
var (
	ErrDatabaseNotConnected = errors.New("database not connected")
	ErrMigrationFailed      = errors.New("migration failed")
	ErrMigrationDirty       = errors.New("database schema is dirty")
)

// Repository errors
var (
	ErrThreadNotFound     = errors.New("thread not found")
	ErrInvalidPartition   = errors.New("invalid partition name")
	ErrInvalidDocumentID  = errors.New("invalid document id")
	ErrInvalidThreadState = errors.New("invalid thread state")
)
