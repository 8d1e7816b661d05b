package queue

import (
	"context"
	"fmt"
	"time"

	"pms-sync/core/metrics"

	"gorm.io/gorm"
)

// Store persists commands in the sync_commands outbox table.
type Store struct {
	db     *gorm.DB
	broker *Broker
	now    func() time.Time
}

// NewStore creates an outbox store on top of the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithBroker makes Enqueue also relay commands to RabbitMQ so a broker
// worker picks them up without polling. The outbox row remains the source
// of truth; a lost relay is recovered by the poll loop.
func (s *Store) WithBroker(b *Broker) *Store {
	s.broker = b
	return s
}

// Enqueue appends one command to the outbox.
func (s *Store) Enqueue(ctx context.Context, cmd Command) error {
	if err := s.db.WithContext(ctx).Create(&cmd).Error; err != nil {
		return fmt.Errorf("failed to enqueue %s for %s: %w", cmd.Operation, cmd.TargetID, err)
	}
	if s.broker != nil && cmd.RunAfter.Before(s.now().Add(time.Second)) {
		if err := s.broker.Publish(ctx, cmd); err != nil {
			// The poll loop picks the row up later.
			return nil
		}
	}
	return nil
}

// Due returns up to limit pending commands whose RunAfter has passed,
// oldest first.
func (s *Store) Due(ctx context.Context, limit int) ([]Command, error) {
	var cmds []Command
	err := s.db.WithContext(ctx).
		Where("status = ? AND run_after <= ?", StatusPending, s.now()).
		Order("run_after").
		Limit(limit).
		Find(&cmds).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load due commands: %w", err)
	}

	s.observeBacklog(ctx)
	return cmds, nil
}

// MarkDone finalizes a successfully executed command.
func (s *Store) MarkDone(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&Command{}).
		Where("id = ?", id).
		Update("status", StatusDone).Error
}

// MarkFailed records a failed delivery. The command is re-delayed with
// exponential backoff until MaxAttempts is reached, then parked as failed
// for manual inspection.
func (s *Store) MarkFailed(ctx context.Context, id string, cause error) error {
	var cmd Command
	if err := s.db.WithContext(ctx).First(&cmd, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to load command %s: %w", id, err)
	}

	cmd.Attempts++
	cmd.LastError = cause.Error()

	if cmd.Attempts >= MaxAttempts {
		cmd.Status = StatusFailed
	} else {
		delay := time.Minute << (cmd.Attempts - 1)
		if delay > 30*time.Minute {
			delay = 30 * time.Minute
		}
		cmd.RunAfter = s.now().Add(delay)
	}

	return s.db.WithContext(ctx).Save(&cmd).Error
}

// Backlog counts runnable commands still waiting in the outbox.
func (s *Store) Backlog(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Command{}).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count, err
}

func (s *Store) observeBacklog(ctx context.Context) {
	if count, err := s.Backlog(ctx); err == nil {
		metrics.CommandBacklog.Set(float64(count))
	}
}
