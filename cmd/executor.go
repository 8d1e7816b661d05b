package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// executor maps queued commands onto the feature services.
type executor struct {
	db           *gorm.DB
	listings     *listing.Service
	calendars    *calendar.Service
	reservations *reservation.Service
	logger       *zap.Logger
}

// pushPayload carries the actor context of an outbound push command.
type pushPayload struct {
	ActingUser string `json:"acting_user"`
}

// Execute runs one command. Returned errors send the command back through
// the outbox backoff.
func (e *executor) Execute(ctx context.Context, cmd queue.Command) error {
	switch cmd.Operation {
	case queue.OpReservationSync:
		_, err := e.reservations.Reconciler().Reconcile(ctx, cmd.Payload,
			reservation.Scope{Origin: reservation.OriginRemote})
		return err

	case queue.OpPushCreate, queue.OpPushReserve, queue.OpPushCancel:
		return e.executePush(ctx, cmd)

	case queue.OpCalendarApply:
		var day calendar.WebhookDay
		if err := json.Unmarshal(cmd.Payload, &day); err != nil {
			return fmt.Errorf("bad calendar payload: %w", err)
		}
		mapping, err := e.listings.Resolve(ctx, day.ListingID)
		if err != nil {
			return err
		}
		return e.calendars.Apply(ctx, mapping.ID, cmd.Payload)

	case queue.OpCalendarPull:
		mapping, err := e.listings.Resolve(ctx, cmd.TargetID)
		if err != nil {
			return err
		}
		from := time.Now()
		_, err = e.calendars.PullRange(ctx, mapping, from, from.AddDate(0, 0, calendarDays))
		return err

	case queue.OpListingPull:
		if cmd.TargetID == "" {
			_, err := e.listings.PullAll(ctx)
			return err
		}
		return e.listings.PullOne(ctx, cmd.TargetID)

	default:
		return fmt.Errorf("unknown operation %q", cmd.Operation)
	}
}

// executePush loads the local record and dispatches the outbound change.
func (e *executor) executePush(ctx context.Context, cmd queue.Command) error {
	id, err := strconv.ParseUint(cmd.TargetID, 10, 64)
	if err != nil {
		return fmt.Errorf("push target %q is not a local id: %w", cmd.TargetID, err)
	}

	var rec reservation.Record
	if err := e.db.WithContext(ctx).First(&rec, uint(id)).Error; err != nil {
		return err
	}

	var payload pushPayload
	if len(cmd.Payload) > 0 {
		_ = json.Unmarshal(cmd.Payload, &payload)
	}
	scope := reservation.Scope{ActingUser: payload.ActingUser, Origin: reservation.OriginLocal}

	dispatcher := e.reservations.Dispatcher()
	switch cmd.Operation {
	case queue.OpPushCreate:
		return dispatcher.PushCreate(ctx, &rec, scope)
	case queue.OpPushReserve:
		return dispatcher.PushReserve(ctx, &rec, scope)
	default:
		return dispatcher.PushCancel(ctx, &rec, scope)
	}
}
