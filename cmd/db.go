package main

import (
	"fmt"

	"github.com/latoulicious/HokkoMail/internal/config"
	"github.com/spf13/cobra"
)

// NewDBCmd creates the db command group.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			dm, _, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer dm.Close()

			if err := dm.Migrate(); err != nil {
				return err
			}

			version, err := dm.GetSchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.DatabasePath, version)
			return nil
		},
	})
	return cmd
}
