package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bits/internal/app"
	"bits/internal/domain"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <origin> <destination>",
	Short: "Price the fastest and economic routes between two zones",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Storage.Schema.Migrate(ctx); err != nil {
			return err
		}

		result, err := a.Services.Pricing.Quote(ctx, args[0], args[1], a.Clock())
		if err != nil {
			return err
		}

		printQuote(cmd.OutOrStdout(), result.Route, result.Condition)
		return nil
	},
}

func printQuote(w io.Writer, q domain.RouteQuote, cond domain.SurgeCondition) {
	fmt.Fprintf(w, "%s -> %s  (%.1f km)\n", q.Origin, q.Destination, q.DistanceKm)
	fmt.Fprintf(w, "conditions: %s, %s, x%.2f\n", cond.Weather, cond.TimePeriod, cond.Multiplier)
	fmt.Fprintf(w, "  fastest:  %6d IQD  %3d min  %.1f km  x%.2f\n",
		q.Fastest.Price, q.Fastest.TimeMinutes, q.Fastest.DistanceKm, q.Fastest.Multiplier)
	fmt.Fprintf(w, "  economic: %6d IQD  %3d min  %.1f km  x%.2f\n",
		q.Economic.Price, q.Economic.TimeMinutes, q.Economic.DistanceKm, q.Economic.Multiplier)
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}
