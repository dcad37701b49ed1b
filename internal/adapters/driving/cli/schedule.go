package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/catalyst-labs/radar/internal/connectors/disclosures"
	"github.com/catalyst-labs/radar/internal/connectors/dodcontracts"
	"github.com/catalyst-labs/radar/internal/connectors/secfilings"
	"github.com/catalyst-labs/radar/internal/connectors/usaspending"
	"github.com/catalyst-labs/radar/internal/core/domain"
	"github.com/catalyst-labs/radar/internal/core/services"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run all connectors on their configured cadences",
	Long: `Starts the scheduler in the foreground. Each connector runs on its
own interval; a connector still running when its next slot comes due is
skipped for that slot. Stop with Ctrl-C; in-flight runs are allowed to
finish.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}

	jobs := []domain.ScheduledJob{
		{ConnectorName: secfilings.Name, Interval: settings.SchedFilings, Limit: settings.LimitFilings, Enabled: true},
		{ConnectorName: usaspending.Name, Interval: settings.SchedSpending, Limit: settings.LimitSpending, Enabled: true},
		{ConnectorName: dodcontracts.Name, Interval: settings.SchedContracts, Limit: settings.LimitContracts, Enabled: true},
		{ConnectorName: disclosures.Name, Interval: settings.SchedDisclosures, Limit: settings.LimitDisclosures, Enabled: true},
	}

	scheduler := services.NewScheduler(ingestRunner, store.JobStore(), jobs)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.Println("scheduler running; press Ctrl-C to stop")
	err := scheduler.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cmd.Println("stopping, waiting for in-flight runs...")
	return scheduler.Stop()
}
