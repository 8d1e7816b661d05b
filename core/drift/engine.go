package drift

import (
	"context"
	"sort"

	"pms-sync/core/guesty"

	"gorm.io/gorm"
)

// Run performs a full drift detection across all entities of the adapter's
// model. It builds both indices, computes the union of ids, and returns a
// report with one result per divergent entity.
func Run(ctx context.Context, spec *Spec, db *gorm.DB, client guesty.Client) (*Report, error) {
	cache, err := GetOrBuildCache(ctx, spec, db, client)
	if err != nil {
		return nil, err
	}

	union := make(map[string]struct{}, len(cache.LocalIndex)+len(cache.RemoteIndex))
	for id := range cache.LocalIndex {
		union[id] = struct{}{}
	}
	for id := range cache.RemoteIndex {
		union[id] = struct{}{}
	}

	report := &Report{Summary: Summary{TotalItems: len(union)}}
	for id := range union {
		result := buildResult(id, cache.LocalIndex, cache.RemoteIndex, spec.Adapter)
		if !result.Drifted() {
			continue
		}

		if !result.LocalPresent {
			report.Summary.MissingLocal++
		}
		if !result.RemotePresent {
			report.Summary.MissingRemote++
		}
		if len(result.Mismatch) > 0 {
			report.Summary.Mismatches++
		}
		report.Results = append(report.Results, result)
	}

	// Sort results by id for deterministic output
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].ID < report.Results[j].ID
	})
	return report, nil
}

// Check performs a targeted drift check for a single entity id using the
// cached indices.
func Check(ctx context.Context, spec *Spec, db *gorm.DB, client guesty.Client, id string) (*Result, error) {
	cache, err := GetOrBuildCache(ctx, spec, db, client)
	if err != nil {
		return nil, err
	}
	result := buildResult(id, cache.LocalIndex, cache.RemoteIndex, spec.Adapter)
	return &result, nil
}

func buildResult(id string, local map[string]LocalItem, remote map[string]RemoteItem, adapter Adapter) Result {
	localItem, localPresent := local[id]
	remoteItem, remotePresent := remote[id]

	result := Result{
		ID:            id,
		LocalPresent:  localPresent,
		RemotePresent: remotePresent,
	}
	if localPresent {
		result.Name = adapter.ResolveName(localItem, nil)
	}
	if remotePresent && result.Name == "" {
		result.Name = adapter.ResolveName(nil, remoteItem)
	}
	if localPresent && remotePresent {
		result.Mismatch = adapter.CompareFields(localItem, remoteItem)
	}
	return result
}
