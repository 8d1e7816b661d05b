package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pms-sync/core/guesty"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotPushed reports that a reservation has no remote counterpart yet.
var ErrNotPushed = fmt.Errorf("reservation has not been pushed to the vendor")

// Dispatcher pushes locally driven reservation changes to the vendor.
// Every push is a no-op under a remote-originated scope so mirrored
// updates never echo back.
type Dispatcher struct {
	db        *gorm.DB
	client    guesty.Client
	guests    *guest.Service
	calendars *calendar.Service
	logger    *zap.Logger
	defaultTZ string
}

// NewDispatcher creates a new dispatcher. Stays on listings without a
// timezone are localized in defaultTimezone.
func NewDispatcher(db *gorm.DB, client guesty.Client, guests *guest.Service, calendars *calendar.Service, logger *zap.Logger, defaultTimezone string) *Dispatcher {
	return &Dispatcher{db: db, client: client, guests: guests, calendars: calendars, logger: logger, defaultTZ: defaultTimezone}
}

// stayLocation resolves the timezone stay dates are localized in, falling
// back to the configured default and finally UTC.
func (d *Dispatcher) stayLocation(tz string) *time.Location {
	for _, name := range []string{tz, d.defaultTZ} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// PushCreate creates the reservation on the vendor side as an inquiry and
// stores the remote id it comes back with.
func (d *Dispatcher) PushCreate(ctx context.Context, rec *Record, scope Scope) error {
	if scope.Origin == OriginRemote {
		return nil
	}
	if rec.ExternalID != nil {
		return nil
	}

	var contact guest.Contact
	if err := d.db.WithContext(ctx).First(&contact, rec.ContactID).Error; err != nil {
		return err
	}
	guestID, err := d.guests.EnsureRemote(ctx, &contact)
	if err != nil {
		return err
	}

	var mapping listing.Mapping
	if err := d.db.WithContext(ctx).First(&mapping, rec.ListingID).Error; err != nil {
		return err
	}

	fareAccommodation, fareCleaning, err := d.pushMoney(ctx, rec)
	if err != nil {
		return err
	}

	loc := d.stayLocation(mapping.Timezone)
	res, err := d.client.Post(ctx, "reservations", map[string]any{
		"listingId":             mapping.ExternalID,
		"guestId":               guestID,
		"checkInDateLocalized":  rec.CheckIn.In(loc).Format("2006-01-02"),
		"checkOutDateLocalized": rec.CheckOut.In(loc).Format("2006-01-02"),
		"status":                StatusInquiry,
		"money": map[string]any{
			"fareAccommodation": fareAccommodation,
			"fareCleaning":      fareCleaning,
			"currency":          rec.Currency,
		},
	})
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("reservation push: vendor returned %d", res.Status)
	}

	var created struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(res.Body, &created); err != nil {
		return err
	}
	if created.ID == "" {
		return fmt.Errorf("reservation push: response carries no _id")
	}

	now := time.Now()
	return d.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		"external_id":  created.ID,
		"status":       StatusInquiry,
		"pending_push": false,
		"updated_at":   now,
	}).Error
}

// PushReserve moves a pushed reservation to reserved, re-verifying the
// stay against the vendor's live calendar first.
func (d *Dispatcher) PushReserve(ctx context.Context, rec *Record, scope Scope) error {
	if scope.Origin == OriginRemote {
		return nil
	}
	if rec.ExternalID == nil {
		return ErrNotPushed
	}
	if !CanTransition(rec.Status, StatusReserved) {
		return fmt.Errorf("reservation %d: cannot move %s to %s", rec.ID, rec.Status, StatusReserved)
	}

	var mapping listing.Mapping
	if err := d.db.WithContext(ctx).First(&mapping, rec.ListingID).Error; err != nil {
		return err
	}
	if err := d.calendars.LiveCheck(ctx, &mapping, rec.CheckIn, rec.CheckOut); err != nil {
		return err
	}

	if err := d.putStatus(ctx, *rec.ExternalID, map[string]any{"status": StatusReserved}); err != nil {
		return err
	}

	return d.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		"status":       StatusReserved,
		"pending_push": false,
	}).Error
}

// PushCancel cancels a pushed reservation, recording who asked for it.
func (d *Dispatcher) PushCancel(ctx context.Context, rec *Record, scope Scope) error {
	if scope.Origin == OriginRemote {
		return nil
	}
	if rec.ExternalID == nil {
		return ErrNotPushed
	}
	if !CanTransition(rec.Status, StatusCanceled) {
		return fmt.Errorf("reservation %d: cannot move %s to %s", rec.ID, rec.Status, StatusCanceled)
	}

	err := d.putStatus(ctx, *rec.ExternalID, map[string]any{
		"status":     StatusCanceled,
		"canceledBy": scope.ActingUser,
	})
	if err != nil {
		return err
	}

	if err := d.db.WithContext(ctx).Model(rec).Updates(map[string]any{
		"status":       StatusCanceled,
		"pending_push": false,
	}).Error; err != nil {
		return err
	}

	if err := d.calendars.Block(ctx, rec.ListingID, rec.CheckIn, rec.CheckOut, calendar.StateAvailable); err != nil {
		d.logger.Warn("Failed to release canceled nights",
			zap.Uint("listing", rec.ListingID), zap.Error(err))
	}
	return nil
}

// pushMoney totals the money breakdown from the sale lines. A reservation
// without a transaction yet falls back to the fares on the record.
func (d *Dispatcher) pushMoney(ctx context.Context, rec *Record) (float64, float64, error) {
	var sale SaleTransaction
	err := d.db.WithContext(ctx).Where("reservation_id = ?", rec.ID).First(&sale).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		return rec.FareAccommodation * float64(rec.NightsCount), rec.FareCleaning, nil
	case err != nil:
		return 0, 0, err
	}

	var lines []SaleLine
	if err := d.db.WithContext(ctx).Where("transaction_id = ?", sale.ID).Find(&lines).Error; err != nil {
		return 0, 0, err
	}

	var fareAccommodation, fareCleaning float64
	for _, line := range lines {
		switch line.Kind {
		case LineAccommodation:
			fareAccommodation += float64(line.Quantity) * line.UnitPrice
		case LineCleaning:
			fareCleaning += float64(line.Quantity) * line.UnitPrice
		}
	}
	return fareAccommodation, fareCleaning, nil
}

func (d *Dispatcher) putStatus(ctx context.Context, externalID string, body map[string]any) error {
	res, err := d.client.Put(ctx, "reservations/"+externalID, body)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("reservation %s: vendor returned %d", externalID, res.Status)
	}
	return nil
}
