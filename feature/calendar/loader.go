package calendar

import (
	"pms-sync/core/archive"
	"pms-sync/core/guesty"
	"pms-sync/core/queue"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Calendar feature.
func NewFeature(db *gorm.DB, client guesty.Client, store *queue.Store, archiver *archive.Archiver, logger *zap.Logger) *Feature {
	svc := NewService(db, client, logger)
	h := NewHandler(svc, store, archiver)
	return &Feature{service: svc, handler: h}
}

// Service exposes the calendar service for other features and commands.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "calendar"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
