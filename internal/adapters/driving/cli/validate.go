package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/catalyst-labs/radar/internal/connectors"
	"github.com/catalyst-labs/radar/internal/core/domain"
)

var validateLimit int

var validateCmd = &cobra.Command{
	Use:   "validate <connector>",
	Short: "Check a connector against its live source without writing",
	Long: `Performs a small fetch against the connector's live source and
reports what would be ingested. Nothing is stored and the checkpoint
does not move, so validate is safe to run at any time.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateLimit, "limit", 20, "max records to fetch")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}

	name := args[0]
	if _, known := connectorSet[name]; !known {
		return fmt.Errorf("%w: %s (known: %s)",
			domain.ErrUnknownConnector, name, strings.Join(connectors.Names(connectorSet), ", "))
	}

	stats, err := ingestRunner.DryRun(cmd.Context(), name, validateLimit)
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}

	cmd.Printf("%s: ok, %d record(s) available\n", name, stats.Fetched)
	return nil
}
