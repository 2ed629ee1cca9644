package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bits/internal/app"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the incident ledger and pricing audit tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		seeded, err := a.Migrate(ctx, migrateSeed)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Database.Driver)
		if migrateSeed {
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sample incidents\n", seeded)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "record sample incidents when the ledger is empty")
	rootCmd.AddCommand(migrateCmd)
}
