package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/latoulicious/HokkoMail/internal/config"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/latoulicious/HokkoMail/pkg/database"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	// Cancelled on CTRL-C or other term signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd creates the hokkomail command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hokkomail",
		Short:         "Discord support bot with reaction menus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		NewRunCmd(),
		NewMenuCmd(),
		NewDBCmd(),
	)
	return cmd
}

// openDatabase connects to the configured database for offline commands
func openDatabase(cfg *config.Config) (database.DatabaseManager, zerolog.Logger, error) {
	log := logging.NewWithWriter(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)

	dbConfig := database.DefaultDatabaseConfig()
	dbConfig.DatabasePath = cfg.DatabasePath

	dm, err := database.NewDatabaseManager(dbConfig, log)
	if err != nil {
		return nil, log, err
	}
	if err := dm.Connect(); err != nil {
		return nil, log, err
	}
	return dm, log, nil
}
