package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation names the deferred work a command carries.
type Operation string

const (
	OpReservationSync Operation = "reservation.sync"
	OpPushCreate      Operation = "reservation.push_create"
	OpPushReserve     Operation = "reservation.push_reserve"
	OpPushCancel      Operation = "reservation.push_cancel"
	OpCalendarApply   Operation = "calendar.apply"
	OpCalendarPull    Operation = "calendar.pull"
	OpListingPull     Operation = "listing.pull"
)

// Command statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// MaxAttempts is the number of deliveries before a command is parked as failed.
const MaxAttempts = 5

// Command is one unit of deferred sync work. Commands are the only way the
// reconciliation core schedules background activity: handlers and services
// emit commands, the worker executes them. Delivery is at-least-once with no
// ordering between commands for the same target.
type Command struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	Operation Operation       `gorm:"size:64;index" json:"operation"`
	TargetID  string          `gorm:"size:128;index" json:"target_id"`
	Payload   json.RawMessage `gorm:"type:json" json:"payload"`
	RunAfter  time.Time       `gorm:"index" json:"run_after"`
	Status    string          `gorm:"size:16;index;default:pending" json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `gorm:"size:512" json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName maps the model to the sync_commands outbox table.
func (Command) TableName() string { return "sync_commands" }

// New builds a pending command. The payload may be nil; delay shifts the
// earliest execution time into the future.
func New(op Operation, targetID string, payload any, delay time.Duration) (Command, error) {
	cmd := Command{
		ID:        uuid.NewString(),
		Operation: op,
		TargetID:  targetID,
		RunAfter:  time.Now().Add(delay),
		Status:    StatusPending,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Command{}, fmt.Errorf("failed to encode command payload: %w", err)
		}
		cmd.Payload = data
	}

	return cmd, nil
}
