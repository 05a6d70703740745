package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"fhirgate/internal/config"
	"fhirgate/internal/core"
	"fhirgate/internal/pkg/logger"
)

// ErrResponseTooLarge is returned when a reply body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("upstream response too large")

// traceHeaders are always forwarded so the backend can correlate requests.
var traceHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

var _ core.Provider = (*Upstream)(nil)

// Upstream forwards validated requests to the backend FHIR service
type Upstream struct {
	cfg    config.UpstreamConfig
	client *http.Client
	log    *logger.Logger
}

// NewUpstream creates a forwarder for the given configuration
func NewUpstream(cfg config.UpstreamConfig, log *logger.Logger) *Upstream {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Wrap(nil)
	}
	return &Upstream{
		cfg: cfg,
		log: log.Named("upstream"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ID returns the provider identifier
func (p *Upstream) ID() string {
	return "fhir-upstream"
}

// Enabled reports whether a backend is configured
func (p *Upstream) Enabled() bool {
	return p.baseURL() != ""
}

// Forward sends the request to the backend and returns its reply
func (p *Upstream) Forward(ctx context.Context, method, path, rawQuery string, headers http.Header, body []byte) (*core.UpstreamResponse, error) {
	target, err := p.buildURL(path, rawQuery)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = p.buildHeaders(headers)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	limit := p.maxResponseBytes()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(respBody)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, limit, target)
	}

	p.log.Debug("upstream call finished",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return &core.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}, nil
}

func (p *Upstream) maxResponseBytes() int64 {
	if p.cfg.MaxResponseBytes > 0 {
		return p.cfg.MaxResponseBytes
	}
	return config.DefaultMaxBodyBytes
}

func (p *Upstream) baseURL() string {
	return strings.TrimRight(resolveEnv(p.cfg.BaseURL), "/")
}

func (p *Upstream) buildURL(path, rawQuery string) (string, error) {
	base := p.baseURL()
	if base == "" {
		return "", fmt.Errorf("upstream base_url is not configured")
	}
	u, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("invalid upstream url: %w", err)
	}
	u.RawQuery = rawQuery
	return u.String(), nil
}

// buildHeaders applies the header policy: allow, set, remove, then trace
// headers which are never removed.
func (p *Upstream) buildHeaders(original http.Header) http.Header {
	policy := p.cfg.HeaderPolicy
	out := make(http.Header)

	for _, name := range policy.Allow {
		for _, v := range original.Values(name) {
			out.Add(name, v)
		}
	}

	for name, value := range policy.Set {
		if v := resolveEnv(value); v != "" {
			out.Set(name, v)
		}
	}

	for _, name := range policy.Remove {
		out.Del(name)
	}

	for _, name := range traceHeaders {
		if v := original.Get(name); v != "" {
			out.Set(name, v)
		}
	}

	if ct := original.Get("Content-Type"); ct != "" && out.Get("Content-Type") == "" {
		out.Set("Content-Type", ct)
	}

	return out
}

// resolveEnv expands the "env:VAR" syntax
func resolveEnv(value string) string {
	if name, ok := strings.CutPrefix(value, "env:"); ok {
		return os.Getenv(name)
	}
	return value
}
