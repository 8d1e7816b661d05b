package cmd

import (
	"fmt"
	"os"

	"pms-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pms-sync",
	Short: "Guesty PMS Sync Service",
	Long: `pms-sync keeps a local property management database consistent with Guesty.
It serves webhook endpoints, runs scheduled pulls, and executes the queued
sync commands that reconcile reservations, calendars and listings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format at debug level so CLI users get readable
		// ISO8601 timestamps instead of epoch seconds
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
