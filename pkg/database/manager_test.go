package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager opens a connected manager backed by a temp-dir database
func newTestManager(t *testing.T) DatabaseManager {
	t.Helper()

	config := DefaultDatabaseConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	dm, err := NewDatabaseManager(config, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, dm.Connect())
	t.Cleanup(func() { dm.Close() })

	return dm
}

func TestNewDatabaseManager(t *testing.T) {
	tests := []struct {
		name        string
		config      *DatabaseConfig
		expectError error
	}{
		{
			name:   "nil config uses defaults",
			config: nil,
		},
		{
			name:   "valid config",
			config: DefaultDatabaseConfig(),
		},
		{
			name: "invalid config - empty database path",
			config: &DatabaseConfig{
				DatabasePath: "",
			},
			expectError: ErrInvalidDatabasePath,
		},
		{
			name: "invalid config - zero max connections",
			config: &DatabaseConfig{
				DatabasePath:   "test.db",
				MaxConnections: 0,
			},
			expectError: ErrInvalidMaxConnections,
		},
		{
			name: "invalid config - unknown synchronous mode",
			config: &DatabaseConfig{
				DatabasePath:      "test.db",
				MaxConnections:    1,
				ConnectionTimeout: 1,
				SynchronousMode:   "SOMETIMES",
			},
			expectError: ErrInvalidSynchronousMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dm, err := NewDatabaseManager(tt.config, zerolog.Nop())

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, dm)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, dm)
			}
		})
	}
}

func TestDatabaseManager_ConnectAndClose(t *testing.T) {
	config := DefaultDatabaseConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	dm, err := NewDatabaseManager(config, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, dm.Ping(ctx), ErrDatabaseNotConnected)

	require.NoError(t, dm.Connect())
	assert.NoError(t, dm.Ping(ctx))

	// Connecting twice is a no-op
	assert.NoError(t, dm.Connect())

	version, err := dm.GetSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	// Re-running migrations on an up-to-date schema is not an error
	assert.NoError(t, dm.Migrate())

	require.NoError(t, dm.Close())
	assert.ErrorIs(t, dm.Ping(ctx), ErrDatabaseNotConnected)
	assert.NoError(t, dm.Close())
}

func TestDatabaseManager_ReopenKeepsData(t *testing.T) {
	config := DefaultDatabaseConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	dm, err := NewDatabaseManager(config, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, dm.Connect())
	require.NoError(t, dm.Partition("Menu").Upsert(ctx, "config", map[string]any{"content": "hi"}))
	require.NoError(t, dm.Close())

	dm, err = NewDatabaseManager(config, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, dm.Connect())
	defer dm.Close()

	var doc map[string]string
	found, err := dm.Partition("Menu").FindOne(ctx, "config", &doc)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hi", doc["content"])
}
