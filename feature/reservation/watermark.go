package reservation

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncState stores per-flow sync progress as key/value rows.
type SyncState struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:64"`
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (SyncState) TableName() string {
	return "sync_state"
}

const watermarkKey = "reservations.last_updated"

// Watermark returns the lastUpdatedAt value the previous incremental pull
// ended at, empty on first run.
func (s *Service) Watermark(ctx context.Context) (string, error) {
	var state SyncState
	err := s.db.WithContext(ctx).Where("key = ?", watermarkKey).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return state.Value, nil
}

// SetWatermark records where the next incremental pull should resume.
func (s *Service) SetWatermark(ctx context.Context, value string) error {
	state := SyncState{Key: watermarkKey, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&state).Error
}
