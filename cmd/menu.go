package main

import (
	"encoding/json"
	"fmt"

	"github.com/latoulicious/HokkoMail/internal/config"
	"github.com/latoulicious/HokkoMail/internal/menu"
	"github.com/spf13/cobra"
)

// NewMenuCmd creates the menu command group.
func NewMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Inspect or remove the stored menu without connecting to Discord",
	}
	cmd.AddCommand(newMenuShowCmd(), newMenuClearCmd())
	return cmd
}

func newMenuShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored menu as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openMenuStore()
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, found, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "No menu configured.")
				return nil
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newMenuClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openMenuStore()
			if err != nil {
				return err
			}
			defer closeStore()

			deleted, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "No menu configured.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Menu cleared.")
			return nil
		},
	}
}

func openMenuStore() (*menu.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	dm, _, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return menu.NewStore(dm.Partition(menu.PartitionName)), func() { dm.Close() }, nil
}
