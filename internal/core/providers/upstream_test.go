package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fhirgate/internal/config"
)

func TestForwardAppliesHeaderPolicy(t *testing.T) {
	t.Setenv("TEST_BACKEND_KEY", "backend-secret")

	var got *http.Request
	var gotBody []byte
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/fhir+json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"resourceType":"Bundle"}`))
	}))
	defer backend.Close()

	up := NewUpstream(config.UpstreamConfig{
		BaseURL: backend.URL + "/",
		Timeout: time.Second,
		HeaderPolicy: config.HeaderPolicy{
			Allow:  []string{"Accept", "Cookie"},
			Set:    map[string]string{"X-Api-Key": "env:TEST_BACKEND_KEY", "X-Static": "yes"},
			Remove: []string{"Cookie", "X-Request-ID"},
		},
	}, nil)
	require.True(t, up.Enabled())

	in := http.Header{}
	in.Set("Accept", "application/fhir+json")
	in.Set("Cookie", "session=1")
	in.Set("Authorization", "Bearer abc")
	in.Set("X-Request-ID", "rid")
	in.Set("X-Correlation-ID", "cid")
	in.Set("Content-Type", "application/fhir+json")

	resp, err := up.Forward(context.Background(), http.MethodPost, "/event/1", "a=b", in, []byte(`{"x":1}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"resourceType":"Bundle"}`, string(resp.Body))
	assert.Equal(t, "application/fhir+json", resp.Header.Get("Content-Type"))

	require.NotNil(t, got)
	assert.Equal(t, "/event/1", got.URL.Path)
	assert.Equal(t, "a=b", got.URL.RawQuery)
	assert.Equal(t, `{"x":1}`, string(gotBody))
	assert.Equal(t, "application/fhir+json", got.Header.Get("Accept"))
	assert.Equal(t, "backend-secret", got.Header.Get("X-Api-Key"))
	assert.Equal(t, "yes", got.Header.Get("X-Static"))
	assert.Empty(t, got.Header.Get("Cookie"))
	assert.Empty(t, got.Header.Get("Authorization"))
	// trace headers survive the remove list
	assert.Equal(t, "rid", got.Header.Get("X-Request-ID"))
	assert.Equal(t, "cid", got.Header.Get("X-Correlation-ID"))
}

func TestForwardReturnsErrorStatuses(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"id":"x","issue":[{"code":"unprocessable_entity"}]}`))
	}))
	defer backend.Close()

	resp, err := NewUpstream(config.UpstreamConfig{BaseURL: backend.URL}, nil).
		Forward(context.Background(), http.MethodGet, "/event", "", http.Header{}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestForwardWithoutBaseURL(t *testing.T) {
	up := NewUpstream(config.UpstreamConfig{BaseURL: "env:TEST_UNSET_BACKEND_URL"}, nil)
	assert.False(t, up.Enabled())

	_, err := up.Forward(context.Background(), http.MethodGet, "/event", "", http.Header{}, nil)
	assert.Error(t, err)
}

func TestForwardUnreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	_, err := NewUpstream(config.UpstreamConfig{BaseURL: url, Timeout: time.Second}, nil).
		Forward(context.Background(), http.MethodGet, "/event", "", http.Header{}, nil)
	assert.Error(t, err)
}

func TestForwardRejectsOversizedReply(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 65)))
	}))
	defer backend.Close()

	up := NewUpstream(config.UpstreamConfig{BaseURL: backend.URL, Timeout: time.Second, MaxResponseBytes: 64}, nil)

	_, err := up.Forward(context.Background(), http.MethodGet, "/event", "", http.Header{}, nil)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestForwardAcceptsReplyAtLimit(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer backend.Close()

	up := NewUpstream(config.UpstreamConfig{BaseURL: backend.URL, Timeout: time.Second, MaxResponseBytes: 64}, nil)

	resp, err := up.Forward(context.Background(), http.MethodGet, "/event", "", http.Header{}, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("TEST_RESOLVE_ENV", "value")
	assert.Equal(t, "value", resolveEnv("env:TEST_RESOLVE_ENV"))
	assert.Equal(t, "literal", resolveEnv("literal"))
	assert.Empty(t, resolveEnv("env:TEST_RESOLVE_ENV_MISSING"))
}
