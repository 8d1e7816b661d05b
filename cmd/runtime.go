package cmd

import (
	"log"

	"pms-sync/core/config"
	"pms-sync/core/database"
	"pms-sync/core/guesty"
	"pms-sync/core/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles the shared dependencies every CLI command needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	client guesty.Client
}

// newRuntime loads configuration and connects the logger, database and
// vendor client. It exits the process on failure; CLI commands have no
// sensible way to continue without these.
func newRuntime() *runtime {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.Error(err))
	}

	return &runtime{
		cfg:    cfg,
		logger: logg,
		db:     db,
		client: guesty.NewClient(cfg.Guesty, logg),
	}
}
