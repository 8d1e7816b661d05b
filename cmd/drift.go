package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pms-sync/core/drift"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var driftID string

// driftCmd is the parent command for all drift detection operations.
var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Detect divergence between the local store and the vendor",
	Long: `Drift compares the local mirror against Guesty and reports entities
missing on either side or carrying mismatched fields. Webhooks get lost;
this is how you find out what they took with them.

Examples:
  # Full reservation drift report
  pms-sync drift reservations

  # Check a single reservation
  pms-sync drift reservations --id 64a1f2...

  # Full listing drift report
  pms-sync drift listings`,
}

// driftReservationsCmd reports reservation drift.
var driftReservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Report reservation drift",
	Run: func(cmd *cobra.Command, args []string) {
		runDrift(cmd, reservation.NewDriftAdapter())
	},
}

// driftListingsCmd reports listing catalog drift.
var driftListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Report listing catalog drift",
	Run: func(cmd *cobra.Command, args []string) {
		runDrift(cmd, listing.NewDriftAdapter())
	},
}

func runDrift(cmd *cobra.Command, adapter drift.Adapter) {
	rt := newRuntime()
	defer rt.logger.Sync()

	spec := &drift.Spec{Adapter: adapter, CacheTTL: 5 * time.Minute}
	ctx := cmd.Context()

	var payload any
	if driftID != "" {
		result, err := drift.Check(ctx, spec, rt.db, rt.client, driftID)
		if err != nil {
			rt.logger.Fatal("Drift check failed", zap.Error(err))
		}
		payload = result
	} else {
		report, err := drift.Run(ctx, spec, rt.db, rt.client)
		if err != nil {
			rt.logger.Fatal("Drift run failed", zap.Error(err))
		}
		payload = report
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		rt.logger.Fatal("Failed to render report", zap.Error(err))
	}
	fmt.Fprintln(os.Stdout, string(out))
}

func init() {
	driftCmd.PersistentFlags().StringVar(&driftID, "id", "", "Check a single entity by vendor id")
	driftCmd.AddCommand(driftReservationsCmd)
	driftCmd.AddCommand(driftListingsCmd)
	RootCmd.AddCommand(driftCmd)
}
