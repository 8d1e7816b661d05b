// Package drift detects divergence between the local store and the vendor.
//
// Webhooks get lost and pulls get interrupted; over time the local mirror
// and Guesty disagree. The drift engine loads both sides into in-memory
// indices, builds the union of ids, and reports entities missing on either
// side or carrying mismatched fields.
//
// # Architecture
//
// The engine is model-agnostic. Adapters implement how to load and compare
// one entity type; the engine handles union building, comparison, and a
// TTL cache with stampede protection so targeted checks don't rebuild the
// indices on every call.
//
// # Usage Example
//
//	spec := &drift.Spec{
//	    Adapter:  reservation.NewDriftAdapter(),
//	    CacheTTL: 5 * time.Minute,
//	}
//
//	// Full report
//	report, err := drift.Run(ctx, spec, db, client)
//
//	// Targeted check (uses cache)
//	result, err := drift.Check(ctx, spec, db, client, "r-1")
package drift
