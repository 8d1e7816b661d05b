// Package guesty wraps the vendor booking API.
//
// It provides an authenticated, stateless request/response client with two
// auth modes: basic (static key/secret pair) and oauth2 (client-credentials
// bearer token, cached until its stored expiration and refreshed lazily).
//
// # Failure contract
//
// Remote failures never surface as Go errors. A non-2xx response or an
// exhausted transport retry comes back as Result.OK == false with the raw
// body retained, so callers must branch explicitly. The error return of the
// client methods only covers local mistakes (unencodable bodies, bad URLs).
//
// # Pagination
//
// GetAll walks a listing endpoint page by page, incrementing the skip offset
// by the page length until an empty page is returned. A failed page aborts
// the walk and discards partial results.
//
// # Usage
//
//	client := guesty.NewClient(cfg.Guesty, logger)
//	res, err := client.Get(ctx, "reservations/"+id, params, guesty.GetOptions{})
//	if err != nil || !res.OK {
//	    // handle
//	}
package guesty
