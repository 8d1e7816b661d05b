package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pms-sync/core/metrics"
	"pms-sync/core/queue"
	"pms-sync/core/utils"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequeueDelay spaces out retries for reservations that cannot be applied
// yet because a local edit is still waiting to be pushed.
const RequeueDelay = 10 * time.Second

// Reconciler applies vendor reservation documents to the local store.
type Reconciler struct {
	db        *gorm.DB
	guests    *guest.Service
	listings  *listing.Service
	calendars *calendar.Service
	store     *queue.Store
	logger    *zap.Logger
}

// NewReconciler creates a new reconciler.
func NewReconciler(db *gorm.DB, guests *guest.Service, listings *listing.Service, calendars *calendar.Service, store *queue.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		db:        db,
		guests:    guests,
		listings:  listings,
		calendars: calendars,
		store:     store,
		logger:    logger,
	}
}

// Reconcile applies one raw vendor reservation document. Replaying the same
// document is a no-op; an older document than the one already applied is
// skipped; a newer document that collides with unpushed local edits is
// requeued instead of applied.
func (r *Reconciler) Reconcile(ctx context.Context, raw json.RawMessage, scope Scope) (*Record, error) {
	var remote remoteReservation
	if err := json.Unmarshal(raw, &remote); err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}
	if remote.ID == "" || remote.ListingID == "" {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reservation document lacks _id or listingId")
	}

	mapping, err := r.listings.Resolve(ctx, remote.ListingID)
	if err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reservation %s: %w", remote.ID, err)
	}

	var existing Record
	err = r.db.WithContext(ctx).Where("external_id = ?", remote.ID).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return r.create(ctx, raw, remote, mapping)
	case err != nil:
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}
	return r.update(ctx, raw, remote, mapping, &existing)
}

func (r *Reconciler) create(ctx context.Context, raw json.RawMessage, remote remoteReservation, mapping *listing.Mapping) (*Record, error) {
	rec, err := r.buildRecord(ctx, remote, mapping)
	if err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return deriveTransaction(tx, rec)
	})
	if err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}

	r.applyCalendar(ctx, rec)
	metrics.ReconcileResults.WithLabelValues("created").Inc()
	r.logger.Info("Reservation created",
		zap.String("reservation", remote.ID), zap.String("status", rec.Status))
	return rec, nil
}

func (r *Reconciler) update(ctx context.Context, raw json.RawMessage, remote remoteReservation, mapping *listing.Mapping, existing *Record) (*Record, error) {
	remoteTime, timeErr := parseRemoteTime(remote.LastUpdatedAt)

	// An update no newer than the applied one carries nothing new.
	if timeErr == nil && existing.RemoteUpdatedAt != nil && !remoteTime.After(*existing.RemoteUpdatedAt) {
		metrics.ReconcileResults.WithLabelValues("stale").Inc()
		r.logger.Debug("Skipping stale reservation update", zap.String("reservation", remote.ID))
		return existing, nil
	}

	if existing.PendingPush {
		cmd, err := queue.New(queue.OpReservationSync, remote.ID, json.RawMessage(raw), RequeueDelay)
		if err != nil {
			metrics.ReconcileResults.WithLabelValues("failed").Inc()
			return nil, err
		}
		if err := r.store.Enqueue(ctx, cmd); err != nil {
			metrics.ReconcileResults.WithLabelValues("failed").Inc()
			return nil, err
		}
		metrics.ReconcileResults.WithLabelValues("requeued").Inc()
		r.logger.Info("Reservation update requeued behind local edits",
			zap.String("reservation", remote.ID))
		return existing, nil
	}

	fresh, err := r.buildRecord(ctx, remote, mapping)
	if err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}
	fresh.ID = existing.ID
	fresh.ContactID = existing.ContactID
	fresh.CreatedAt = existing.CreatedAt

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(fresh).Error; err != nil {
			return err
		}
		return deriveTransaction(tx, fresh)
	})
	if err != nil {
		metrics.ReconcileResults.WithLabelValues("failed").Inc()
		return nil, err
	}

	r.applyCalendar(ctx, fresh)
	metrics.ReconcileResults.WithLabelValues("updated").Inc()
	r.logger.Info("Reservation updated",
		zap.String("reservation", remote.ID), zap.String("status", fresh.Status))
	return fresh, nil
}

// buildRecord maps a vendor document onto a Record, resolving the guest.
func (r *Reconciler) buildRecord(ctx context.Context, remote remoteReservation, mapping *listing.Mapping) (*Record, error) {
	checkIn, err := parseRemoteTime(remote.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: bad checkIn: %w", remote.ID, err)
	}
	checkOut, err := parseRemoteTime(remote.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: bad checkOut: %w", remote.ID, err)
	}

	nights := utils.ToInt(remote.NightsCount)
	if nights <= 0 {
		nights = int(checkOut.Sub(checkIn).Hours() / 24)
	}
	if nights <= 0 {
		return nil, fmt.Errorf("reservation %s: stay has no nights", remote.ID)
	}

	contact, err := r.guests.Resolve(ctx, remote.GuestID)
	if err != nil {
		return nil, fmt.Errorf("reservation %s: resolving guest: %w", remote.ID, err)
	}

	var fareAccommodation, fareCleaning float64
	for _, item := range remote.Money.InvoiceItems {
		switch item.Type {
		case ItemAccommodationFare:
			fareAccommodation = utils.ToFloat(item.Amount)
		case ItemCleaningFee:
			fareCleaning = utils.ToFloat(item.Amount)
		}
	}

	externalID := remote.ID
	rec := &Record{
		ExternalID:        &externalID,
		ListingID:         mapping.ID,
		ContactID:         contact.ID,
		AccountID:         remote.AccountID,
		Status:            remote.Status,
		ConfirmationCode:  utils.ToString(remote.ConfirmationCode),
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		NightsCount:       nights,
		FareAccommodation: fareAccommodation,
		FareCleaning:      fareCleaning,
		Currency:          remote.Money.Currency,
		Source:            remote.Source,
	}
	if t, err := parseRemoteTime(remote.LastUpdatedAt); err == nil {
		rec.RemoteUpdatedAt = &t
	}
	return rec, nil
}

// deriveTransaction creates the sale transaction for a record, once. A
// reservation that already carries a transaction keeps it as is, and
// terminal reservations never get one.
func deriveTransaction(tx *gorm.DB, rec *Record) error {
	if terminal[rec.Status] {
		return nil
	}

	var current SaleTransaction
	err := tx.Where("reservation_id = ?", rec.ID).First(&current).Error
	switch {
	case err == nil:
		return nil
	case err != gorm.ErrRecordNotFound:
		return err
	}

	sale := SaleTransaction{
		ReservationID: rec.ID,
		Reference:     rec.ConfirmationCode,
		Currency:      rec.Currency,
		Total:         rec.FareAccommodation*float64(rec.NightsCount) + rec.FareCleaning,
		Status:        transactionStatus(rec.Status),
	}
	if sale.Reference == "" && rec.ExternalID != nil {
		sale.Reference = *rec.ExternalID
	}
	if err := tx.Create(&sale).Error; err != nil {
		return err
	}

	lines := []SaleLine{{
		TransactionID: sale.ID,
		Kind:          LineAccommodation,
		Description:   "Accommodation fare",
		Quantity:      rec.NightsCount,
		UnitPrice:     rec.FareAccommodation,
	}}
	if rec.FareCleaning > 0 {
		lines = append(lines, SaleLine{
			TransactionID: sale.ID,
			Kind:          LineCleaning,
			Description:   "Cleaning fee",
			Quantity:      1,
			UnitPrice:     rec.FareCleaning,
		})
	}
	return tx.Create(&lines).Error
}

// applyCalendar mirrors the reservation onto the local calendar. Failures
// are logged only; the next calendar pull repairs the mirror.
func (r *Reconciler) applyCalendar(ctx context.Context, rec *Record) {
	state := calendar.StateReserved
	if terminal[rec.Status] {
		state = calendar.StateAvailable
	}
	if err := r.calendars.Block(ctx, rec.ListingID, rec.CheckIn, rec.CheckOut, state); err != nil {
		r.logger.Warn("Failed to mirror reservation onto calendar",
			zap.Uint("listing", rec.ListingID), zap.Error(err))
	}
}

// transactionStatus maps a non-terminal reservation status onto the billing
// document status. Reserved stays auto-confirm their transaction.
func transactionStatus(status string) string {
	switch status {
	case StatusReserved, StatusConfirmed:
		return TxConfirmed
	default:
		return TxDraft
	}
}
