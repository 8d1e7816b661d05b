package listing

import (
	"context"
	"encoding/json"
	"fmt"

	"pms-sync/core/drift"
	"pms-sync/core/guesty"

	"gorm.io/gorm"
)

// DriftAdapter compares the local listing catalog against the vendor.
type DriftAdapter struct{}

// NewDriftAdapter creates a listing drift adapter.
func NewDriftAdapter() *DriftAdapter {
	return &DriftAdapter{}
}

// Name returns the adapter name.
func (a *DriftAdapter) Name() string { return "listing" }

// LoadLocalIndex loads the mapping catalog indexed by vendor id.
func (a *DriftAdapter) LoadLocalIndex(ctx context.Context, db *gorm.DB) (map[string]drift.LocalItem, error) {
	var mappings []Mapping
	if err := db.WithContext(ctx).Find(&mappings).Error; err != nil {
		return nil, err
	}

	index := make(map[string]drift.LocalItem, len(mappings))
	for _, m := range mappings {
		index[m.ExternalID] = m
	}
	return index, nil
}

// LoadRemoteIndex pulls every listing from the vendor indexed by id.
func (a *DriftAdapter) LoadRemoteIndex(ctx context.Context, client guesty.Client) (map[string]drift.RemoteItem, error) {
	docs, ok := client.GetAll(ctx, "listings", nil)
	if !ok {
		return nil, fmt.Errorf("listing drift: vendor rejected the pull")
	}

	index := make(map[string]drift.RemoteItem, len(docs))
	for _, doc := range docs {
		var remote remoteListing
		if err := json.Unmarshal(doc, &remote); err != nil || remote.ID == "" {
			continue
		}
		index[remote.ID] = remote
	}
	return index, nil
}

// ResolveName returns the listing title.
func (a *DriftAdapter) ResolveName(local drift.LocalItem, remote drift.RemoteItem) string {
	if local != nil {
		return local.(Mapping).Name
	}
	if remote != nil {
		return remote.(remoteListing).Title
	}
	return ""
}

// CompareFields reports title, currency and active drift.
func (a *DriftAdapter) CompareFields(local drift.LocalItem, remote drift.RemoteItem) []string {
	l := local.(Mapping)
	r := remote.(remoteListing)

	var mismatches []string
	if l.Name != r.Title {
		mismatches = append(mismatches, fmt.Sprintf("name: remote=%q local=%q", r.Title, l.Name))
	}
	if l.Currency != r.Prices.Currency {
		mismatches = append(mismatches, fmt.Sprintf("currency: remote=%s local=%s", r.Prices.Currency, l.Currency))
	}
	if l.Active != r.Active {
		mismatches = append(mismatches, fmt.Sprintf("active: remote=%t local=%t", r.Active, l.Active))
	}
	return mismatches
}
