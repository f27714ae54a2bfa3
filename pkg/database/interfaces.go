package database

import (
	"context"
	"time"
)

// DatabaseManager defines the interface for the database manager
type DatabaseManager interface {
	// Connection management
	Connect() error
	Close() error
	Ping(ctx context.Context) error

	// Repository access
	Partition(name string) PartitionRepository
	ThreadRepository() ThreadRepository

	// Migration management
	Migrate() error
	GetSchemaVersion() (uint, error)
}

// PartitionRepository is a document store scoped to one feature. Documents are
// JSON objects addressed by a fixed id.
type PartitionRepository interface {
	Name() string

	// FindOne decodes the document into out and reports whether it exists.
	FindOne(ctx context.Context, id string, out any) (bool, error)

	// Upsert sets the given top-level fields, keeping every other field of an
	// existing document. The document is created when absent.
	Upsert(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the document and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// ThreadRepository defines the interface for support thread persistence
type ThreadRepository interface {
	Create(ctx context.Context, thread *Thread) error
	GetOpenByRecipient(ctx context.Context, recipientID string) (*Thread, error)
	GetOpenByChannel(ctx context.Context, channelID string) (*Thread, error)
	UpdateCategory(ctx context.Context, id int64, categoryID string) error
	Close(ctx context.Context, id int64, closedBy string, at time.Time) error

	// Maintenance
	CountOpen(ctx context.Context) (int, error)
	PruneClosed(ctx context.Context, before time.Time) (int64, error)
}
