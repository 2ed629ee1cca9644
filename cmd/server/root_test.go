package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bits/internal/domain"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "migrate", "quote", "geocode"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "bits", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "", flag.DefValue)

	require.NotNil(t, serveCmd.Flags().Lookup("seed"))
	require.NotNil(t, migrateCmd.Flags().Lookup("seed"))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("BITS_DATABASE_PATH", filepath.Join(dir, "bits.db"))
	t.Setenv("BITS_SURGE_WEATHER", "clear")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestGeocodeCommand(t *testing.T) {
	out, err := runCommand(t, "geocode", "33.3209", "44.3661")
	require.NoError(t, err)
	assert.Equal(t, "Mansour (Center), 0.000 km\n", out)

	_, err = runCommand(t, "geocode", "north", "44.3661")
	assert.Error(t, err)

	_, err = runCommand(t, "geocode", "95", "44.3661")
	assert.Error(t, err)
}

func TestMigrateAndQuoteCommands(t *testing.T) {
	out, err := runCommand(t, "migrate", "--seed")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready (sqlite)")
	assert.Contains(t, out, "seeded 4 sample incidents")
	migrateSeed = false

	out, err = runCommand(t, "quote", "Mansour", "Jadriya")
	require.NoError(t, err)
	assert.Contains(t, out, "Mansour -> Jadriya  (2.5 km)")
	assert.Contains(t, out, "fastest:")
	assert.Contains(t, out, "economic:")
}

func TestPrintQuote(t *testing.T) {
	var out bytes.Buffer
	printQuote(&out, domain.RouteQuote{
		Origin:      "A",
		Destination: "B",
		DistanceKm:  2.5,
		Fastest:     domain.Quote{Price: 7125, TimeMinutes: 3, DistanceKm: 2.1, Multiplier: 1},
		Economic:    domain.Quote{Price: 4750, TimeMinutes: 7, DistanceKm: 3.0, Multiplier: 1},
	}, domain.SurgeCondition{Weather: domain.WeatherClear, TimePeriod: domain.PeriodMorning, Multiplier: 1})

	assert.Equal(t, "A -> B  (2.5 km)\n"+
		"conditions: clear, morning, x1.00\n"+
		"  fastest:    7125 IQD    3 min  2.1 km  x1.00\n"+
		"  economic:   4750 IQD    7 min  3.0 km  x1.00\n", out.String())
}
