package guesty

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a single vendor API call.
//
// Remote failures (non-2xx responses, exhausted transport retries) are
// reported through OK, not through the error return of the client methods.
// Callers must branch on OK explicitly; the raw body is retained for
// logging either way.
type Result struct {
	// OK is true when the response status was accepted.
	OK bool
	// Status is the HTTP status code, or 0 on transport failure.
	Status int
	// Body is the raw response body.
	Body []byte
}

// Decode unmarshals the response body into v.
func (r *Result) Decode(v any) error {
	if !r.OK {
		return fmt.Errorf("cannot decode failed result (status %d)", r.Status)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode vendor response: %w", err)
	}
	return nil
}

// envelope is the vendor's paginated list shape.
type envelope struct {
	Count   int               `json:"count"`
	Results []json.RawMessage `json:"results"`
}

// Results unwraps the vendor's {count, results} list envelope. A body
// that is a bare object is returned as a single-element list, matching
// how the vendor answers by-id lookups.
func (r *Result) Results() ([]json.RawMessage, error) {
	var env envelope
	if err := r.Decode(&env); err != nil {
		return nil, err
	}
	if env.Results != nil {
		return env.Results, nil
	}

	var single json.RawMessage
	if err := json.Unmarshal(r.Body, &single); err != nil {
		return nil, fmt.Errorf("failed to decode vendor response: %w", err)
	}
	return []json.RawMessage{single}, nil
}
