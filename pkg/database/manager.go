package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/latoulicious/HokkoMail/internal/logging"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// databaseManager implements the DatabaseManager interface
type databaseManager struct {
	config           *DatabaseConfig
	db               *sqlx.DB
	threadRepository ThreadRepository
	log              zerolog.Logger

	// State management
	connected bool
	mutex     sync.RWMutex
}

// NewDatabaseManager creates a new database manager
func NewDatabaseManager(config *DatabaseConfig, log zerolog.Logger) (DatabaseManager, error) {
	if config == nil {
		config = DefaultDatabaseConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dm := &databaseManager{
		config: config,
		log:    logging.Component(log, "database"),
	}

	return dm, nil
}

// Connect establishes database connection and initializes components
func (dm *databaseManager) Connect() error {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	if dm.connected {
		return nil
	}

	db, err := sqlx.Open("sqlite3", dm.buildConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(dm.config.MaxConnections)
	db.SetMaxIdleConns(dm.config.MaxConnections)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	version, err := runMigrations(db.DB)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dm.db = db
	dm.threadRepository = NewThreadRepository(db)
	dm.connected = true

	dm.log.Info().
		Str("path", dm.config.DatabasePath).
		Uint("schema_version", version).
		Msg("database connected")
	return nil
}

// Close closes the database connection
func (dm *databaseManager) Close() error {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	if !dm.connected {
		return nil
	}

	if err := dm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	dm.connected = false
	dm.log.Info().Msg("database closed")
	return nil
}

// Ping tests the database connection
func (dm *databaseManager) Ping(ctx context.Context) error {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	if !dm.connected || dm.db == nil {
		return ErrDatabaseNotConnected
	}

	return dm.db.PingContext(ctx)
}

// Partition returns the document store for a feature. It must be called
// after Connect.
func (dm *databaseManager) Partition(name string) PartitionRepository {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()
	return NewPartitionRepository(dm.db, name)
}

// ThreadRepository returns the thread repository
func (dm *databaseManager) ThreadRepository() ThreadRepository {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()
	return dm.threadRepository
}

// Migrate runs database migrations
func (dm *databaseManager) Migrate() error {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	if !dm.connected {
		return ErrDatabaseNotConnected
	}
	_, err := runMigrations(dm.db.DB)
	return err
}

// GetSchemaVersion returns the current schema version
func (dm *databaseManager) GetSchemaVersion() (uint, error) {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	if !dm.connected {
		return 0, ErrDatabaseNotConnected
	}
	return schemaVersion(dm.db.DB)
}

// buildConnectionString builds the go-sqlite3 DSN with options
func (dm *databaseManager) buildConnectionString() string {
	connStr := "file:" + dm.config.DatabasePath + "?"

	if dm.config.WALMode {
		connStr += "_journal_mode=WAL&"
	}
	if dm.config.BusyTimeout > 0 {
		connStr += fmt.Sprintf("_busy_timeout=%d&", dm.config.BusyTimeout.Milliseconds())
	}

	connStr += fmt.Sprintf("_synchronous=%s&", dm.config.SynchronousMode)
	connStr += "_foreign_keys=on"

	return connStr
}
