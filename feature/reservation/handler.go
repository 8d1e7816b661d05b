package reservation

import (
	"context"
	"encoding/json"
	"strconv"

	"pms-sync/core/archive"
	"pms-sync/core/logger"
	"pms-sync/core/metrics"
	"pms-sync/core/queue"
	"pms-sync/feature/listing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Webhook event names the vendor sends for reservations.
const (
	EventReservationNew     = "reservation.new"
	EventReservationUpdated = "reservation.updated"
)

// Handler handles HTTP requests for reservations.
type Handler struct {
	service  *Service
	store    *queue.Store
	archiver *archive.Archiver
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, store *queue.Store, archiver *archive.Archiver) *Handler {
	return &Handler{service: service, store: store, archiver: archiver}
}

// RegisterRoutes registers the reservation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/guesty/reservations", h.HandleWebhook)
	app.Get("/reservations/:id", h.HandleGetReservation)
	app.Post("/reservations", h.HandleCreateBooking)
	app.Post("/reservations/:id/reserve", h.HandleReserveBooking)
	app.Post("/reservations/:id/cancel", h.HandleCancelBooking)
}

// HandleWebhook ingests a reservation webhook. The payload is archived and
// a fresh copy of the reservation is queued for reconciliation; the
// webhook body itself can already be stale when it arrives.
// @Summary Reservation Webhook
// @Description Receive a Guesty reservation event and queue it for reconciliation.
// @Tags reservation
// @Accept json
// @Produce json
// @Param payload body object true "Guesty webhook payload"
// @Success 200 {object} map[string]bool "Acknowledged"
// @Failure 400 {object} map[string]string "Malformed payload"
// @Router /guesty/reservations [post]
func (h *Handler) HandleWebhook(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var event reservationEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil || len(event.Reservation) == 0 {
		l.Warn("Discarding malformed reservation webhook", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payload has no reservation object",
		})
	}

	var remote remoteReservation
	if err := json.Unmarshal(event.Reservation, &remote); err != nil || remote.ID == "" {
		l.Warn("Discarding reservation webhook without _id", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "reservation object has no _id",
		})
	}

	metrics.WebhookEvents.WithLabelValues(event.Event).Inc()
	h.archiver.Save(c.Context(), event.Event, remote.ID, c.Body())

	if event.Event != EventReservationNew && event.Event != EventReservationUpdated {
		l.Info("Ignoring unhandled webhook event",
			zap.String("event", event.Event), zap.String("reservation", remote.ID))
		return c.JSON(fiber.Map{"success": true, "ignored": event.Event})
	}

	if _, err := h.service.listings.Resolve(c.Context(), remote.ListingID); err == listing.ErrUnmapped {
		// Queue a catalog refresh for the unknown listing so a retry of
		// this webhook can land.
		if cmd, err := queue.New(queue.OpListingPull, remote.ListingID, nil, 0); err == nil {
			_ = h.store.Enqueue(c.Context(), cmd)
		}
		l.Info("Ignoring reservation for unmapped listing",
			zap.String("reservation", remote.ID), zap.String("listing", remote.ListingID))
		return c.JSON(fiber.Map{"success": true, "skipped": "unmapped listing"})
	}

	doc, err := h.service.Fetch(c.Context(), remote.ID)
	if err != nil {
		// Fall back to the webhook body when the fresh fetch fails.
		l.Warn("Reservation refetch failed, queueing webhook body",
			zap.String("reservation", remote.ID), zap.Error(err))
		doc = event.Reservation
	}

	cmd, err := queue.New(queue.OpReservationSync, remote.ID, doc, 0)
	if err != nil {
		l.Error("Failed to build reservation command", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if err := h.store.Enqueue(c.Context(), cmd); err != nil {
		l.Error("Failed to enqueue reservation command", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	l.Info("Reservation webhook accepted",
		zap.String("event", event.Event), zap.String("reservation", remote.ID))
	return c.JSON(fiber.Map{"success": true})
}

// bookingAction carries the actor of a booking transition request.
type bookingAction struct {
	ActingUser string `json:"acting_user"`
}

// HandleCreateBooking records a locally initiated booking and queues its
// outbound push.
// @Summary Create Booking
// @Description Create a local booking and queue it for pushing to Guesty.
// @Tags reservation
// @Accept json
// @Produce json
// @Param payload body BookingRequest true "Booking"
// @Success 201 {object} Record "Created booking"
// @Failure 400 {object} map[string]string "Invalid booking"
// @Router /reservations [post]
func (h *Handler) HandleCreateBooking(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req struct {
		BookingRequest
		ActingUser string `json:"acting_user"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		l.Warn("Discarding malformed booking request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed booking request",
		})
	}

	rec, err := h.service.CreateLocal(c.Context(), req.BookingRequest, req.ActingUser)
	if err == listing.ErrUnmapped {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "unknown listing"})
	}
	if err != nil {
		l.Warn("Rejecting booking request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// HandleReserveBooking queues the move of a local booking to reserved.
// @Summary Reserve Booking
// @Description Queue the reserve push for a local booking.
// @Tags reservation
// @Accept json
// @Produce json
// @Param id path int true "Local booking id"
// @Param payload body bookingAction false "Actor"
// @Success 200 {object} Record "Booking"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Router /reservations/{id}/reserve [post]
func (h *Handler) HandleReserveBooking(c *fiber.Ctx) error {
	return h.handleTransition(c, h.service.Reserve)
}

// HandleCancelBooking queues the cancellation of a local booking.
// @Summary Cancel Booking
// @Description Queue the cancel push for a local booking.
// @Tags reservation
// @Accept json
// @Produce json
// @Param id path int true "Local booking id"
// @Param payload body bookingAction false "Actor"
// @Success 200 {object} Record "Booking"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Router /reservations/{id}/cancel [post]
func (h *Handler) HandleCancelBooking(c *fiber.Ctx) error {
	return h.handleTransition(c, h.service.Cancel)
}

func (h *Handler) handleTransition(c *fiber.Ctx, move func(context.Context, uint, string) (*Record, error)) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "bad booking id"})
	}

	var action bookingAction
	if len(c.Body()) > 0 {
		_ = json.Unmarshal(c.Body(), &action)
	}

	rec, err := move(c.Context(), uint(id), action.ActingUser)
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "unknown booking"})
	}
	if err != nil {
		l.Warn("Rejecting booking transition", zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(rec)
}

// HandleGetReservation returns the local record for a remote reservation id.
// @Summary Get Reservation
// @Description Look up the local record for a Guesty reservation id.
// @Tags reservation
// @Produce json
// @Param id path string true "Remote reservation id"
// @Success 200 {object} Record "Reservation"
// @Failure 404 {object} map[string]string "Unknown reservation"
// @Router /reservations/{id} [get]
func (h *Handler) HandleGetReservation(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.Context(), c.Params("id"))
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown reservation"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}
