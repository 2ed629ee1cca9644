package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"bits/internal/zone"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <lat> <lon>",
	Short: "Find the zone nearest to a coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "parse latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "parse longitude %q", args[1])
		}

		registry, err := zone.Load(cfg.Zones.Path)
		if err != nil {
			return err
		}

		result, err := registry.Nearest(lat, lon)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), %.3f km\n", result.Zone, result.Region, result.DistanceKm)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
