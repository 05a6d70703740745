package core

import (
	"context"
	"net/http"
)

// UpstreamResponse is a backend reply. Error statuses are not Go errors.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Provider is the backend adapter interface
type Provider interface {
	// ID returns the unique identifier for this provider
	ID() string
	// Enabled reports whether the provider has somewhere to send requests
	Enabled() bool
	// Forward sends an accepted request and returns the raw reply
	Forward(ctx context.Context, method, path, rawQuery string, headers http.Header, body []byte) (*UpstreamResponse, error)
}
