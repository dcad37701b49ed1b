// Package cli is the cobra command surface of the radar binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalyst-labs/radar/internal/adapters/driven/storage/sqlite"
	"github.com/catalyst-labs/radar/internal/config"
	"github.com/catalyst-labs/radar/internal/connectors"
	"github.com/catalyst-labs/radar/internal/core/ports/driven"
	"github.com/catalyst-labs/radar/internal/core/ports/driving"
	"github.com/catalyst-labs/radar/internal/core/services"
	"github.com/catalyst-labs/radar/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagDataDir string
)

// Services wired on first use. Commands that only transform data
// (normalize, version) never initialise them, so those commands stay
// free of database side effects.
var (
	settings     config.Settings
	store        *sqlite.Store
	connectorSet map[string]driven.Connector
	ingestRunner driving.IngestRunner
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Harvest and normalise public records into catalyst events",
	Long: `radar ingests public records (securities filings, federal spending
awards, defense contract announcements, legislator disclosures) into a
local raw-document store, and normalises them into canonical events.

Each connector resumes from a persisted checkpoint, so repeated runs
fetch only what is new.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.radar/data)")
}

// Execute runs the CLI and releases the store on exit.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices opens the store and wires the connector set and runner.
// Idempotent; commands call it on demand.
func initServices() error {
	if ingestRunner != nil {
		return nil
	}

	settings = config.Load()
	if flagDataDir != "" {
		settings.DataDir = flagDataDir
	}

	s, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	store = s

	connectorSet = connectors.Build(settings)
	ingestRunner = services.NewRunner(
		connectorSet,
		store.CheckpointStore(),
		store.RawDocumentStore(),
		store.RunLedger(),
	)
	return nil
}

func closeServices() {
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
		store = nil
	}
}
