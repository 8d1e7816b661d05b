package reservation

import (
	"pms-sync/core/archive"
	"pms-sync/core/guesty"
	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Reservation feature.
func NewFeature(db *gorm.DB, client guesty.Client, guests *guest.Service, listings *listing.Service, calendars *calendar.Service, store *queue.Store, archiver *archive.Archiver, logger *zap.Logger, defaultTimezone string) *Feature {
	reconciler := NewReconciler(db, guests, listings, calendars, store, logger)
	dispatcher := NewDispatcher(db, client, guests, calendars, logger, defaultTimezone)
	svc := NewService(db, client, listings, reconciler, dispatcher, store, logger)
	h := NewHandler(svc, store, archiver)
	return &Feature{service: svc, handler: h}
}

// Service exposes the reservation service for command execution.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "reservation"
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
