package mocks

import (
	"context"
	"encoding/json"
	"net/url"

	"pms-sync/core/guesty"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of guesty.Client
type Client struct {
	mock.Mock
}

func (m *Client) Get(ctx context.Context, path string, params url.Values, opts guesty.GetOptions) (*guesty.Result, error) {
	args := m.Called(ctx, path, params, opts)
	if res, ok := args.Get(0).(*guesty.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetAll(ctx context.Context, path string, params url.Values) ([]json.RawMessage, bool) {
	args := m.Called(ctx, path, params)
	if items, ok := args.Get(0).([]json.RawMessage); ok {
		return items, args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *Client) Post(ctx context.Context, path string, body any) (*guesty.Result, error) {
	args := m.Called(ctx, path, body)
	if res, ok := args.Get(0).(*guesty.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Put(ctx context.Context, path string, body any) (*guesty.Result, error) {
	args := m.Called(ctx, path, body)
	if res, ok := args.Get(0).(*guesty.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CheckCredentials(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// OKResult builds a successful Result from a JSON-encodable value.
func OKResult(v any) *guesty.Result {
	data, _ := json.Marshal(v)
	return &guesty.Result{OK: true, Status: 200, Body: data}
}

// FailedResult builds a failed Result with the given status.
func FailedResult(status int) *guesty.Result {
	return &guesty.Result{OK: false, Status: status}
}
