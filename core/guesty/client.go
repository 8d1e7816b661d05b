package guesty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"pms-sync/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize is the page length used when none is requested.
const DefaultPageSize = 25

// maxGetAttempts bounds transport retries for idempotent calls.
const maxGetAttempts = 3

// GetOptions controls pagination of a GET call.
type GetOptions struct {
	// Paginate adds skip/limit parameters to the call.
	Paginate bool
	// Skip is the offset of the first record.
	Skip int
	// Limit is the page size; DefaultPageSize when zero.
	Limit int
}

// Client performs authenticated calls against the vendor booking API.
//
// All methods normalize remote failures into Result.OK == false; the error
// return is reserved for local mistakes such as unencodable bodies. See
// the Result type for the full contract.
type Client interface {
	// Get fetches a single page or resource.
	Get(ctx context.Context, path string, params url.Values, opts GetOptions) (*Result, error)
	// GetAll fetches every page of a listing endpoint, incrementing the
	// skip offset until an empty page is returned. It stops on the first
	// failed page and reports false, discarding partial results.
	GetAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, bool)
	// Post creates a resource.
	Post(ctx context.Context, path string, body any) (*Result, error)
	// Put updates a resource.
	Put(ctx context.Context, path string, body any) (*Result, error)
	// CheckCredentials calls accounts/me and returns the vendor account id.
	CheckCredentials(ctx context.Context) (string, error)
}

type client struct {
	cfg       Config
	endpoints Endpoints
	http      *http.Client
	logger    *zap.Logger

	mu         sync.Mutex
	token      string
	tokenExp   time.Time
	refreshSF  singleflight.Group
}

// NewClient creates a vendor API client from the configuration.
func NewClient(cfg Config, logger *zap.Logger) Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &client{
		cfg:       cfg,
		endpoints: cfg.Endpoints(),
		http:      &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:    logger,
	}
}

func (c *client) Get(ctx context.Context, path string, params url.Values, opts GetOptions) (*Result, error) {
	if params == nil {
		params = url.Values{}
	}
	if opts.Paginate {
		limit := opts.Limit
		if limit <= 0 {
			limit = DefaultPageSize
		}
		params.Set("skip", strconv.Itoa(opts.Skip))
		params.Set("limit", strconv.Itoa(limit))
	}

	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *client) GetAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, bool) {
	const pageSize = 100

	var all []json.RawMessage
	skip := 0
	for {
		res, err := c.Get(ctx, path, cloneValues(params), GetOptions{Paginate: true, Skip: skip, Limit: pageSize})
		if err != nil || !res.OK {
			return nil, false
		}

		page, err := res.Results()
		if err != nil {
			c.logger.Error("failed to decode vendor page", zap.String("path", path), zap.Error(err))
			return nil, false
		}

		if len(page) == 0 {
			return all, true
		}

		all = append(all, page...)
		skip += len(page)
	}
}

func (c *client) Post(ctx context.Context, path string, body any) (*Result, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *client) Put(ctx context.Context, path string, body any) (*Result, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// CheckCredentials validates the configured credentials against the vendor.
// The vendor offers no dedicated validation endpoint; accounts/me answers
// 200 for any key with read access.
func (c *client) CheckCredentials(ctx context.Context) (string, error) {
	res, err := c.Get(ctx, "accounts/me", nil, GetOptions{})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("credential check failed with status %d", res.Status)
	}

	var account struct {
		ID string `json:"_id"`
	}
	if err := res.Decode(&account); err != nil {
		return "", err
	}
	return account.ID, nil
}

// do performs one HTTP call, retrying transport failures for GET.
func (c *client) do(ctx context.Context, method, path string, params url.Values, body any) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.endpoints.API, "/"), strings.TrimPrefix(path, "/"))

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = maxGetAttempts
	}

	bo := newBackoff(200*time.Millisecond, 2*time.Second, 2.0)
	start := time.Now()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(bo.Next()):
			case <-ctx.Done():
				metrics.ObserveVendorRequest(method, "error", time.Since(start))
				return &Result{}, nil
			}
		}

		res, retryable, err := c.doOnce(ctx, method, endpoint, params, payload)
		if err == nil {
			outcome := "ok"
			if !res.OK {
				outcome = "remote_error"
			}
			metrics.ObserveVendorRequest(method, outcome, time.Since(start))
			return res, nil
		}

		lastErr = err
		if !retryable {
			break
		}
	}

	c.logger.Error("vendor request failed",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Error(lastErr),
	)
	metrics.ObserveVendorRequest(method, "error", time.Since(start))

	// Transport failures surface as a failed Result, not an error.
	return &Result{}, nil
}

func (c *client) doOnce(ctx context.Context, method, endpoint string, params url.Values, payload []byte) (res *Result, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, false, err
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.cfg.AuthType == AuthOAuth2 {
		token, err := c.getToken(ctx)
		if err != nil {
			return nil, false, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.SetBasicAuth(c.cfg.ApiKey, c.cfg.ApiSecret)
	}

	c.logger.Debug("calling vendor API", zap.String("method", method), zap.String("url", endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		c.logger.Error("vendor API rejected request",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
	}

	return &Result{OK: ok, Status: resp.StatusCode, Body: data}, false, nil
}

// getToken returns a cached bearer token, refreshing it lazily on expiry.
// Refreshes are deduplicated with singleflight so parallel calls do not
// stampede the token endpoint.
func (c *client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	value, err, _ := c.refreshSF.Do("token", func() (any, error) {
		// Re-check after winning the flight; a sibling may have refreshed.
		c.mu.Lock()
		if c.token != "" && time.Now().Before(c.tokenExp) {
			token := c.token
			c.mu.Unlock()
			return token, nil
		}
		c.mu.Unlock()

		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "open-api")
	form.Set("client_id", c.cfg.ApiKey)
	form.Set("client_secret", c.cfg.ApiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Auth, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request rejected with status %d: %s", resp.StatusCode, data)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.mu.Lock()
	c.token = tokenResp.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	c.mu.Unlock()

	return tokenResp.AccessToken, nil
}

func cloneValues(v url.Values) url.Values {
	out := url.Values{}
	for key, vals := range v {
		for _, val := range vals {
			out.Add(key, val)
		}
	}
	return out
}
