package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"pms-sync/core/archive"
	"pms-sync/core/config"
	"pms-sync/core/database"
	"pms-sync/core/guesty"
	"pms-sync/core/loader"
	"pms-sync/core/logger"
	"pms-sync/core/middleware/auth"
	"pms-sync/core/middleware/rayid"
	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "pms-sync/docs/swagger"
)

// @title PMS Sync API
// @version 1.0
// @description Webhook intake and availability API for the Guesty sync service.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server serving webhook endpoints and the availability API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := migrateAll(db); err != nil {
			logg.Fatal("Failed to run migrations", zap.Error(err))
		}

		// 4. Vendor Client
		client := guesty.NewClient(cfg.Guesty, logg)
		if account, err := client.CheckCredentials(cmd.Context()); err != nil {
			logg.Warn("Vendor credential check failed", zap.Error(err))
		} else {
			logg.Info("Vendor credentials verified", zap.String("account", account))
		}

		// 5. Webhook Archive (optional)
		archiver := archive.NewArchiver(nil, cfg.Archive.Bucket, logg)
		if cfg.Archive.Enabled {
			store, err := archive.NewClient(cfg.Archive)
			if err != nil {
				logg.Fatal("Failed to create archive client", zap.Error(err))
			}
			archiver = archive.NewArchiver(store, cfg.Archive.Bucket, logg)
			if err := archiver.EnsureBucket(cmd.Context()); err != nil {
				logg.Fatal("Failed to prepare archive bucket", zap.Error(err))
			}
		}

		// 6. Command Queue
		store := queue.NewStore(db)
		if cfg.Broker.Enabled {
			broker, err := queue.NewBroker(cfg.Broker, logg)
			if err != nil {
				logg.Fatal("Failed to connect to broker", zap.Error(err))
			}
			defer broker.Close()
			store = store.WithBroker(broker)
		}

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 8. Feature Loader
		guests := guest.NewService(db, client, logg, cfg.Server.DefaultCountry)
		listings := listing.NewFeature(db, client, archiver, logg)
		calendars := calendar.NewFeature(db, client, store, archiver, logg)
		reservations := reservation.NewFeature(db, client, guests,
			listings.Service(), calendars.Service(), store, archiver, logg,
			cfg.Server.DefaultTimezone)

		mgr := loader.NewManager()
		mgr.Register(listings)
		mgr.Register(calendars)
		mgr.Register(reservations)

		// Middleware Registration
		// RayID first so everything is traceable
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// Auth protects the rest
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
