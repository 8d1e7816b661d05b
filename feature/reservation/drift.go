package reservation

import (
	"context"
	"encoding/json"
	"fmt"

	"pms-sync/core/drift"
	"pms-sync/core/guesty"
	"pms-sync/core/utils"

	"gorm.io/gorm"
)

// driftRow is the minimal local projection the drift adapter compares.
type driftRow struct {
	ExternalID        string
	Status            string
	NightsCount       int
	FareAccommodation float64
	FareCleaning      float64
}

// DriftAdapter compares the local reservation store against the vendor.
type DriftAdapter struct{}

// NewDriftAdapter creates a reservation drift adapter.
func NewDriftAdapter() *DriftAdapter {
	return &DriftAdapter{}
}

// Name returns the adapter name.
func (a *DriftAdapter) Name() string { return "reservation" }

// LoadLocalIndex loads pushed reservations indexed by vendor id. Local
// records that were never pushed have no counterpart to drift against.
func (a *DriftAdapter) LoadLocalIndex(ctx context.Context, db *gorm.DB) (map[string]drift.LocalItem, error) {
	var rows []struct {
		ExternalID        *string
		Status            string
		NightsCount       int
		FareAccommodation float64
		FareCleaning      float64
	}
	err := db.WithContext(ctx).Model(&Record{}).
		Select("external_id", "status", "nights_count", "fare_accommodation", "fare_cleaning").
		Where("external_id IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	index := make(map[string]drift.LocalItem, len(rows))
	for _, row := range rows {
		index[*row.ExternalID] = driftRow{
			ExternalID:        *row.ExternalID,
			Status:            row.Status,
			NightsCount:       row.NightsCount,
			FareAccommodation: row.FareAccommodation,
			FareCleaning:      row.FareCleaning,
		}
	}
	return index, nil
}

// LoadRemoteIndex pulls every reservation from the vendor indexed by id.
func (a *DriftAdapter) LoadRemoteIndex(ctx context.Context, client guesty.Client) (map[string]drift.RemoteItem, error) {
	docs, ok := client.GetAll(ctx, "reservations", nil)
	if !ok {
		return nil, fmt.Errorf("reservation drift: vendor rejected the pull")
	}

	index := make(map[string]drift.RemoteItem, len(docs))
	for _, doc := range docs {
		var remote remoteReservation
		if err := json.Unmarshal(doc, &remote); err != nil || remote.ID == "" {
			continue
		}
		index[remote.ID] = remote
	}
	return index, nil
}

// ResolveName returns the confirmation code or vendor id.
func (a *DriftAdapter) ResolveName(local drift.LocalItem, remote drift.RemoteItem) string {
	if remote != nil {
		r := remote.(remoteReservation)
		if code := utils.ToString(r.ConfirmationCode); code != "" {
			return code
		}
		return r.ID
	}
	if local != nil {
		return local.(driftRow).ExternalID
	}
	return ""
}

// CompareFields reports status and money drift between the two sides.
func (a *DriftAdapter) CompareFields(local drift.LocalItem, remote drift.RemoteItem) []string {
	l := local.(driftRow)
	r := remote.(remoteReservation)

	var mismatches []string
	if l.Status != r.Status {
		mismatches = append(mismatches, fmt.Sprintf("status: remote=%s local=%s", r.Status, l.Status))
	}
	if nights := utils.ToInt(r.NightsCount); nights > 0 && l.NightsCount != nights {
		mismatches = append(mismatches, fmt.Sprintf("nights: remote=%d local=%d", nights, l.NightsCount))
	}

	var fareAccommodation, fareCleaning float64
	for _, item := range r.Money.InvoiceItems {
		switch item.Type {
		case ItemAccommodationFare:
			fareAccommodation = utils.ToFloat(item.Amount)
		case ItemCleaningFee:
			fareCleaning = utils.ToFloat(item.Amount)
		}
	}
	if l.FareAccommodation != fareAccommodation {
		mismatches = append(mismatches, fmt.Sprintf("fare_accommodation: remote=%.2f local=%.2f",
			fareAccommodation, l.FareAccommodation))
	}
	if l.FareCleaning != fareCleaning {
		mismatches = append(mismatches, fmt.Sprintf("fare_cleaning: remote=%.2f local=%.2f",
			fareCleaning, l.FareCleaning))
	}
	return mismatches
}
