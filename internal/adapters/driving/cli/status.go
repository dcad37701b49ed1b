package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalyst-labs/radar/internal/connectors"
	"github.com/catalyst-labs/radar/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [connector]",
	Short: "Show checkpoint and last-run state per connector",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	names := connectors.Names(connectorSet)
	if len(args) == 1 {
		if _, ok := connectorSet[args[0]]; !ok {
			return fmt.Errorf("%w: %q (available: %s)",
				domain.ErrUnknownConnector, args[0], strings.Join(names, ", "))
		}
		names = []string{args[0]}
	}

	docCount, err := store.RawDocumentStore().Count(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("raw documents stored: %d\n\n", docCount)

	for _, name := range names {
		cmd.Printf("%s\n", name)

		cp, err := store.CheckpointStore().Get(ctx, name)
		if err != nil {
			return err
		}
		switch {
		case cp.UpdatedAt.IsZero():
			cmd.Println("  checkpoint: none")
		case cp.LastSince != nil:
			cmd.Printf("  checkpoint: since %s (cursor %q, updated %s)\n",
				cp.LastSince.Format(time.RFC3339), cp.LastCursor, cp.UpdatedAt.Format(time.RFC3339))
		default:
			cmd.Printf("  checkpoint: cursor %q (updated %s)\n",
				cp.LastCursor, cp.UpdatedAt.Format(time.RFC3339))
		}

		run, err := store.RunLedger().LastRun(ctx, name)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			cmd.Println("  last run:   never")
		case err != nil:
			return err
		default:
			cmd.Printf("  last run:   %s at %s (fetched=%d stored=%d deduped=%d)\n",
				run.Status, run.StartedAt.Format(time.RFC3339),
				run.Stats.Fetched, run.Stats.Stored, run.Stats.Deduped)
			if run.ErrorText != "" {
				cmd.Printf("  last error: %s\n", run.ErrorText)
			}
		}

		job, err := store.JobStore().GetJob(ctx, name)
		if err != nil {
			return err
		}
		if job != nil {
			state := "enabled"
			if !job.Enabled {
				state = "disabled"
			}
			cmd.Printf("  schedule:   every %s, next %s (%s)\n",
				job.Interval, job.NextRun.Format(time.RFC3339), state)
		}
		cmd.Println()
	}
	return nil
}
