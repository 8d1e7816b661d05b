package cmd

import (
	"encoding/json"
	"time"

	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var calendarDays int

// pullCmd is the parent command for all scheduled pull operations.
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull data from the vendor into the local store",
	Long: `Pull refreshes the local mirror from Guesty. Webhooks keep the mirror
fresh in normal operation; pulls backfill what webhooks missed and seed
a new deployment.`,
}

// pullListingsCmd refreshes the listing mapping catalog.
var pullListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Pull the full listing catalog",
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		defer rt.logger.Sync()

		listings := listing.NewService(rt.db, rt.client, rt.logger)
		count, err := listings.PullAll(cmd.Context())
		if err != nil {
			rt.logger.Fatal("Listing pull failed", zap.Error(err))
		}
		rt.logger.Info("Listing pull finished", zap.Int("count", count))
	},
}

// pullReservationsCmd pulls reservations updated since the last watermark
// and reconciles them.
var pullReservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "Pull reservations updated since the last pull",
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		defer rt.logger.Sync()

		svc := buildStack(rt).reservations
		ctx := cmd.Context()

		since, err := svc.Watermark(ctx)
		if err != nil {
			rt.logger.Fatal("Failed to read watermark", zap.Error(err))
		}

		docs, err := svc.PullUpdated(ctx, since)
		if err != nil {
			rt.logger.Fatal("Reservation pull failed", zap.Error(err))
		}

		applied, failed := 0, 0
		mark := since
		for _, doc := range docs {
			if _, err := svc.Reconciler().Reconcile(ctx, doc, reservation.Scope{Origin: reservation.OriginRemote}); err != nil {
				rt.logger.Warn("Reconcile failed", zap.Error(err))
				failed++
				continue
			}
			applied++

			var stamp struct {
				LastUpdatedAt string `json:"lastUpdatedAt"`
			}
			// Vendor timestamps sort lexically on their stable prefix.
			if json.Unmarshal(doc, &stamp) == nil && stamp.LastUpdatedAt > mark {
				mark = stamp.LastUpdatedAt
			}
		}

		if mark != since {
			if err := svc.SetWatermark(ctx, mark); err != nil {
				rt.logger.Fatal("Failed to advance watermark", zap.Error(err))
			}
		}
		rt.logger.Info("Reservation pull finished",
			zap.Int("applied", applied), zap.Int("failed", failed), zap.String("watermark", mark))
	},
}

// pullCalendarsCmd queues a calendar refresh for every active listing.
// The worker executes the pulls; the stagger keeps the vendor rate limit
// out of trouble on large catalogs.
var pullCalendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Queue calendar pulls for all active listings",
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		defer rt.logger.Sync()

		ctx := cmd.Context()
		store := queue.NewStore(rt.db)

		var mappings []listing.Mapping
		if err := rt.db.WithContext(ctx).Where("active = ?", true).Find(&mappings).Error; err != nil {
			rt.logger.Fatal("Failed to load listing catalog", zap.Error(err))
		}

		queued := 0
		for i, m := range mappings {
			c, err := queue.New(queue.OpCalendarPull, m.ExternalID, nil, time.Duration(i)*2*time.Second)
			if err != nil {
				rt.logger.Fatal("Failed to build command", zap.Error(err))
			}
			if err := store.Enqueue(ctx, c); err != nil {
				rt.logger.Fatal("Failed to queue calendar pull",
					zap.String("listing", m.ExternalID), zap.Error(err))
			}
			queued++
		}
		rt.logger.Info("Calendar pulls queued",
			zap.Int("listings", queued), zap.Int("days", calendarDays))
	},
}

// stack bundles the wired feature services for CLI use.
type stack struct {
	listings     *listing.Service
	calendars    *calendar.Service
	reservations *reservation.Service
	store        *queue.Store
}

// buildStack wires the full feature stack outside the HTTP server.
func buildStack(rt *runtime) *stack {
	guests := guest.NewService(rt.db, rt.client, rt.logger, rt.cfg.Server.DefaultCountry)
	listings := listing.NewService(rt.db, rt.client, rt.logger)
	calendars := calendar.NewService(rt.db, rt.client, rt.logger)
	store := queue.NewStore(rt.db)

	reconciler := reservation.NewReconciler(rt.db, guests, listings, calendars, store, rt.logger)
	dispatcher := reservation.NewDispatcher(rt.db, rt.client, guests, calendars, rt.logger, rt.cfg.Server.DefaultTimezone)
	reservations := reservation.NewService(rt.db, rt.client, listings, reconciler, dispatcher, store, rt.logger)

	return &stack{
		listings:     listings,
		calendars:    calendars,
		reservations: reservations,
		store:        store,
	}
}

// migrateAll runs the schema migrations CLI commands depend on.
func migrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&listing.Mapping{}, &guest.Contact{}, &guest.Mapping{},
		&calendar.Day{}, &queue.Command{},
		&reservation.Record{}, &reservation.SaleTransaction{},
		&reservation.SaleLine{}, &reservation.SyncState{},
	)
}

func init() {
	pullCalendarsCmd.Flags().IntVar(&calendarDays, "days", 180, "How many days of calendar to pull")
	pullCmd.AddCommand(pullListingsCmd)
	pullCmd.AddCommand(pullReservationsCmd)
	pullCmd.AddCommand(pullCalendarsCmd)
	RootCmd.AddCommand(pullCmd)
}
