package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pms-sync/core/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	workerInterval  time.Duration
	workerBatchSize int
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the sync command worker",
	Long: `The worker drains the sync command outbox: reconciling queued
reservation documents, applying calendar days, and pushing local changes
to the vendor. With the broker enabled it additionally consumes commands
from RabbitMQ as they are published.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		defer rt.logger.Sync()

		if err := migrateAll(rt.db); err != nil {
			rt.logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		services := buildStack(rt)
		exec := &executor{
			db:           rt.db,
			listings:     services.listings,
			calendars:    services.calendars,
			reservations: services.reservations,
			logger:       rt.logger,
		}
		store := services.store

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if rt.cfg.Broker.Enabled {
			broker, err := queue.NewBroker(rt.cfg.Broker, rt.logger)
			if err != nil {
				rt.logger.Fatal("Failed to connect to broker", zap.Error(err))
			}
			defer broker.Close()

			go func() {
				// Failures are acked here; the outbox backoff owns
				// retries, a broker redelivery would race it.
				handler := func(ctx context.Context, c queue.Command) error {
					runCommand(ctx, store, exec, c, rt.logger)
					return nil
				}
				if err := broker.Consume(ctx, handler); err != nil && ctx.Err() == nil {
					rt.logger.Error("Broker consumer stopped", zap.Error(err))
				}
			}()
		}

		go pollLoop(ctx, store, exec, rt.logger)

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		rt.logger.Info("Shutting down worker...")
		cancel()
	},
}

// pollLoop drains due commands until the context is canceled.
func pollLoop(ctx context.Context, store *queue.Store, exec *executor, logg *zap.Logger) {
	ticker := time.NewTicker(workerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cmds, err := store.Due(ctx, workerBatchSize)
		if err != nil {
			logg.Error("Failed to load due commands", zap.Error(err))
			continue
		}
		for _, c := range cmds {
			runCommand(ctx, store, exec, c, logg)
		}
	}
}

// runCommand executes one command and settles its outbox row.
func runCommand(ctx context.Context, store *queue.Store, exec *executor, c queue.Command, logg *zap.Logger) {
	if err := exec.Execute(ctx, c); err != nil {
		logg.Warn("Command failed",
			zap.String("operation", string(c.Operation)),
			zap.String("target", c.TargetID),
			zap.Error(err))
		if markErr := store.MarkFailed(ctx, c.ID, err); markErr != nil {
			logg.Error("Failed to record command failure", zap.Error(markErr))
		}
		return
	}
	if err := store.MarkDone(ctx, c.ID); err != nil {
		logg.Error("Failed to finalize command", zap.Error(err))
	}
}

func init() {
	workerCmd.Flags().DurationVar(&workerInterval, "interval", 5*time.Second, "Outbox poll interval")
	workerCmd.Flags().IntVar(&workerBatchSize, "batch", 50, "Commands per poll")
	RootCmd.AddCommand(workerCmd)
}
