package reservation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pms-sync/core/queue"
	"pms-sync/feature/guest"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Check-in and check-out times of day, in the listing's timezone. The
// vendor only cares about the localized dates.
const (
	checkInHour  = 15
	checkOutHour = 11
)

// BookingRequest is a locally initiated reservation. Dates are localized
// calendar dates in the listing's timezone.
type BookingRequest struct {
	ListingID   string  `json:"listing_id"`
	GuestName   string  `json:"guest_name"`
	GuestEmail  string  `json:"guest_email"`
	GuestPhone  string  `json:"guest_phone"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	NightlyFare float64 `json:"nightly_fare"`
	CleaningFee float64 `json:"cleaning_fee"`
	Currency    string  `json:"currency"`
}

// CreateLocal records a new booking as a local inquiry and queues it for
// the outbound push that assigns its remote id.
func (s *Service) CreateLocal(ctx context.Context, req BookingRequest, actor string) (*Record, error) {
	mapping, err := s.listings.Resolve(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	loc := s.dispatcher.stayLocation(mapping.Timezone)
	checkIn, err := time.ParseInLocation("2006-01-02", req.CheckIn, loc)
	if err != nil {
		return nil, fmt.Errorf("bad check_in %q: %w", req.CheckIn, err)
	}
	checkOut, err := time.ParseInLocation("2006-01-02", req.CheckOut, loc)
	if err != nil {
		return nil, fmt.Errorf("bad check_out %q: %w", req.CheckOut, err)
	}
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights <= 0 {
		return nil, fmt.Errorf("stay from %s to %s has no nights", req.CheckIn, req.CheckOut)
	}
	if req.GuestName == "" {
		return nil, fmt.Errorf("booking needs a guest name")
	}

	currency := req.Currency
	if currency == "" {
		currency = mapping.Currency
	}

	rec := &Record{
		ListingID:         mapping.ID,
		AccountID:         mapping.AccountID,
		Status:            StatusInquiry,
		CheckIn:           checkIn.Add(checkInHour * time.Hour),
		CheckOut:          checkOut.Add(checkOutHour * time.Hour),
		NightsCount:       nights,
		FareAccommodation: req.NightlyFare,
		FareCleaning:      req.CleaningFee,
		Currency:          currency,
		PendingPush:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contact := guest.Contact{
			Name:  req.GuestName,
			Email: req.GuestEmail,
			Phone: req.GuestPhone,
		}
		if err := tx.Create(&contact).Error; err != nil {
			return err
		}
		rec.ContactID = contact.ID
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return deriveTransaction(tx, rec)
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueuePush(ctx, queue.OpPushCreate, rec.ID, actor); err != nil {
		return nil, err
	}
	s.logger.Info("Local booking created",
		zap.Uint("reservation", rec.ID), zap.String("listing", req.ListingID))
	return rec, nil
}

// Reserve queues the move of a local booking to reserved.
func (s *Service) Reserve(ctx context.Context, id uint, actor string) (*Record, error) {
	return s.queueTransition(ctx, id, StatusReserved, queue.OpPushReserve, actor)
}

// Cancel queues the cancellation of a local booking.
func (s *Service) Cancel(ctx context.Context, id uint, actor string) (*Record, error) {
	return s.queueTransition(ctx, id, StatusCanceled, queue.OpPushCancel, actor)
}

func (s *Service) queueTransition(ctx context.Context, id uint, target string, op queue.Operation, actor string) (*Record, error) {
	var rec Record
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	if rec.ExternalID == nil {
		return nil, ErrNotPushed
	}
	if !CanTransition(rec.Status, target) {
		return nil, fmt.Errorf("reservation %d: cannot move %s to %s", rec.ID, rec.Status, target)
	}

	if err := s.db.WithContext(ctx).Model(&rec).Update("pending_push", true).Error; err != nil {
		return nil, err
	}
	if err := s.enqueuePush(ctx, op, rec.ID, actor); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) enqueuePush(ctx context.Context, op queue.Operation, id uint, actor string) error {
	cmd, err := queue.New(op, strconv.FormatUint(uint64(id), 10),
		map[string]string{"acting_user": actor}, 0)
	if err != nil {
		return err
	}
	return s.store.Enqueue(ctx, cmd)
}
