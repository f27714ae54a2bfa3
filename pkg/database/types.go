package database

import (
	"time"
)

// DatabaseConfig holds configuration for the database manager
type DatabaseConfig struct {
	// Connection settings
	DatabasePath      string        `json:"database_path" yaml:"database_path"`
	MaxConnections    int           `json:"max_connections" yaml:"max_connections"`
	ConnectionTimeout time.Duration `json:"connection_timeout" yaml:"connection_timeout"`
	BusyTimeout       time.Duration `json:"busy_timeout" yaml:"busy_timeout"`

	// Performance settings
	WALMode         bool   `json:"wal_mode" yaml:"wal_mode"`
	SynchronousMode string `json:"synchronous_mode" yaml:"synchronous_mode"`
}

// DefaultDatabaseConfig returns a configuration with sensible defaults
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		DatabasePath:      "hokkomail.db",
		MaxConnections:    1, // SQLite prefers a single writer
		ConnectionTimeout: 30 * time.Second,
		BusyTimeout:       5 * time.Second,

		WALMode:         true,
		SynchronousMode: "NORMAL",
	}
}

// Validate validates the database configuration
func (c *DatabaseConfig) Validate() error {
	if c.DatabasePath == "" {
		return ErrInvalidDatabasePath
	}
	if c.MaxConnections <= 0 {
		return ErrInvalidMaxConnections
	}
	if c.ConnectionTimeout <= 0 {
		return ErrInvalidConnectionTimeout
	}
	if c.SynchronousMode != "OFF" && c.SynchronousMode != "NORMAL" && c.SynchronousMode != "FULL" {
		return ErrInvalidSynchronousMode
	}
	return nil
}

// ThreadStatus is the lifecycle state of a support thread
type ThreadStatus string

const (
	ThreadOpen   ThreadStatus = "open"
	ThreadClosed ThreadStatus = "closed"
)

// Thread is a persisted support thread: one staff channel mirrored to one
// user's direct messages.
type Thread struct {
	ID          int64        `db:"id" json:"id"`
	RecipientID string       `db:"recipient_id" json:"recipient_id"`
	ChannelID   string       `db:"channel_id" json:"channel_id"`
	DMChannelID string       `db:"dm_channel_id" json:"dm_channel_id"`
	GuildID     string       `db:"guild_id" json:"guild_id"`
	CategoryID  string       `db:"category_id" json:"category_id"`
	Status      ThreadStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	ClosedAt    *time.Time   `db:"closed_at" json:"closed_at,omitempty"`
	ClosedBy    string       `db:"closed_by" json:"closed_by,omitempty"`
}
