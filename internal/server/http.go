package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"fhirgate/internal/config"
	"fhirgate/internal/core"
	"fhirgate/internal/core/catalog"
	"fhirgate/internal/core/processors"
	"fhirgate/internal/core/providers"
	"fhirgate/internal/core/security"
	"fhirgate/internal/core/upstream"
	"fhirgate/internal/core/validation"
	"fhirgate/internal/pkg/logger"
	"fhirgate/internal/pkg/metrics"
)

const (
	contentTypeFHIR = "application/fhir+json"
	contentTypeJSON = "application/json"

	// otherCodeLabel stands in for issue codes without known diagnostics.
	otherCodeLabel = "other"
)

// HTTPServer extends the basic server with the FHIR gateway flow
type HTTPServer struct {
	*Server
	cfg      *config.Config
	catalog  *catalog.Catalog
	pipeline *core.Pipeline
	upstream core.Provider
	metrics  *metrics.Metrics
	handler  http.Handler
}

// NewHTTPServer wires the pipeline from configuration. Every catalog key the
// flow can select is checked here, so a missing entry fails startup instead
// of a request.
func NewHTTPServer(cfg *config.Config, cat *catalog.Catalog, log *zap.Logger) (*HTTPServer, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	validator := validation.New(cfg.Validation.Rules())
	faults := catalog.NewFaultMapper(cfg.Faults.Names())
	errHandler := processors.NewErrorHandler(cat, faults, cfg.Proxy.Enabled)

	if err := cat.Require(validator.Keys()...); err != nil {
		return nil, fmt.Errorf("validation rules: %w", err)
	}
	if err := cat.Require(errHandler.Keys()...); err != nil {
		return nil, fmt.Errorf("fault mappings: %w", err)
	}
	if err := cat.Require(catalog.KeyPageNotFound, catalog.KeyPayloadTooLarge); err != nil {
		return nil, err
	}

	pipeline := core.NewPipeline(
		processors.NewRequestLogger(),
		processors.NewRequestValidator(validator),
		errHandler,
		processors.NewDynamicPayload(),
	)
	if cfg.Auth.Enabled {
		secret := cfg.Auth.Secret()
		if len(secret) == 0 {
			log.Warn("auth enabled without a secret, every token will be rejected",
				zap.String("secret_env", cfg.Auth.SecretEnv))
		}
		pipeline.AddProcessor(processors.NewTokenVerifier(security.NewVerifier(security.VerifierConfig{
			Secret:   secret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
			Leeway:   cfg.Auth.Leeway,
		})))
	}

	s := &HTTPServer{
		Server:   New(cfg.Server.Addr(), log),
		cfg:      cfg,
		catalog:  cat,
		pipeline: pipeline,
		upstream: providers.NewUpstream(cfg.Upstream, logger.Wrap(log)),
		metrics:  metrics.New(),
	}
	s.handler = s.routes()

	names := make([]string, 0, len(pipeline.Processors()))
	for _, p := range pipeline.Processors() {
		names = append(names, p.Name())
	}
	log.Info("pipeline ready",
		zap.Strings("processors", names),
		zap.Int("catalog_entries", cat.Len()),
		zap.String("provider", s.upstream.ID()),
		zap.Bool("upstream", s.upstream.Enabled()),
	)
	return s, nil
}

// Handler returns the root handler, used by tests
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Metrics returns the collectors behind /metrics
func (s *HTTPServer) Metrics() *metrics.Metrics {
	return s.metrics
}

// Start serves until the process is signalled
func (s *HTTPServer) Start() error {
	return s.serve(s.handler)
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.cfg.Metrics.Enabled {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	mux.HandleFunc("/", s.handleFlow)
	return mux
}

// handleFlow runs one exchange through the pipeline
func (s *HTTPServer) handleFlow(w http.ResponseWriter, r *http.Request) {
	vars := core.NewMemoryVariables()
	ctx := core.NewFlowContext(r.Context(), s.log, vars)

	suffix := s.pathSuffix(r.URL.Path)
	headerNames := make([]string, 0, len(r.Header))
	for name := range r.Header {
		headerNames = append(headerNames, name)
	}
	vars.Set(core.VarPathSuffix, suffix)
	vars.Set(core.VarHeaderNames, headerNames)
	vars.Set(core.VarAuthorization, r.Header.Get("Authorization"))

	if err := s.pipeline.ExecuteRequest(ctx); err != nil {
		ctx.Log.Error("request phase failed", zap.Error(err))
		s.fail(w, ctx)
		return
	}

	if content, ok := core.GetString(vars, core.VarErrorContent); ok {
		status, _ := core.GetInt(vars, core.VarErrorStatusCode)
		key, _ := core.GetString(vars, core.VarErrorKey)
		s.metrics.ObserveError(key, status)
		s.writeBody(w, status, contentTypeFHIR, []byte(content))
		s.metrics.ObserveRequest(metrics.OutcomeRejected, time.Since(ctx.StartTime).Seconds())
		return
	}

	if s.answerLocally(w, suffix) {
		s.metrics.ObserveRequest(metrics.OutcomeLocal, time.Since(ctx.StartTime).Seconds())
		return
	}

	if !s.upstream.Enabled() {
		s.writeEntry(w, ctx, catalog.KeyPageNotFound)
		s.metrics.ObserveRequest(metrics.OutcomeLocal, time.Since(ctx.StartTime).Seconds())
		return
	}

	limit := s.cfg.Server.MaxBodyBytes
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		ctx.Log.Warn("failed to read request body", zap.Error(err))
		s.fail(w, ctx)
		return
	}
	if int64(len(body)) > limit {
		ctx.Log.Info("Request Rejected",
			zap.String("error_key", catalog.KeyPayloadTooLarge),
			zap.Int64("limit", limit),
		)
		s.writeEntry(w, ctx, catalog.KeyPayloadTooLarge)
		s.metrics.ObserveRequest(metrics.OutcomeRejected, time.Since(ctx.StartTime).Seconds())
		return
	}

	headers := r.Header.Clone()
	if headers.Get("X-Request-ID") == "" {
		headers.Set("X-Request-ID", ctx.RequestID)
	}
	resp, err := s.upstream.Forward(ctx, r.Method, suffix, r.URL.RawQuery, headers, body)
	if err != nil {
		ctx.Log.Error("upstream request failed", zap.Error(err))
		s.fail(w, ctx)
		return
	}

	s.respondUpstream(w, ctx, resp)
}

// respondUpstream runs the response phase and relays the upstream reply.
// Error bodies are rewritten when the mapper can read them.
func (s *HTTPServer) respondUpstream(w http.ResponseWriter, ctx *core.FlowContext, resp *core.UpstreamResponse) {
	ctx.Vars.Set(core.VarResponseStatus, resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		ctx.Vars.Set(core.VarResponseContent, string(resp.Body))
	}

	body := resp.Body
	contentType := resp.Header.Get("Content-Type")

	err := s.pipeline.ExecuteResponse(ctx)
	switch {
	case errors.Is(err, upstream.ErrMalformedUpstreamBody):
		ctx.Log.Warn("upstream error body passed through", zap.Error(err), zap.Int("status", resp.StatusCode))
	case err != nil:
		ctx.Log.Error("response phase failed", zap.Error(err))
		s.fail(w, ctx)
		return
	default:
		if mapped, ok := core.GetString(ctx.Vars, core.VarDynamicResponse); ok {
			body = []byte(mapped)
			contentType = contentTypeFHIR
			s.metrics.UpstreamMapped.WithLabelValues(codeLabel(gjson.GetBytes(body, "issue.0.code").String())).Inc()
		}
	}

	for name, values := range resp.Header {
		if strings.EqualFold(name, "Content-Length") || strings.EqualFold(name, "Content-Type") {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	s.writeBody(w, resp.StatusCode, contentType, body)
	s.metrics.ObserveRequest(metrics.OutcomeForwarded, time.Since(ctx.StartTime).Seconds())
}

// answerLocally serves the monitoring endpoints that never reach the backend.
func (s *HTTPServer) answerLocally(w http.ResponseWriter, suffix string) bool {
	var payload map[string]any
	switch {
	case matchesPath(suffix, "/_ping"):
		payload = map[string]any{"status": "pass"}
	case matchesPath(suffix, "/_status"):
		upstreamCheck := "disabled"
		if s.upstream.Enabled() {
			upstreamCheck = "configured"
		}
		payload = map[string]any{
			"status": "pass",
			"checks": map[string]any{
				"catalog":  s.catalog.Len(),
				"upstream": upstreamCheck,
				"proxy":    s.cfg.Proxy.Enabled,
			},
		}
	default:
		return false
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		s.log.Error("failed to encode status", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return true
	}
	s.writeBody(w, http.StatusOK, contentTypeJSON, body)
	return true
}

// writeEntry renders a catalog entry at its own status.
func (s *HTTPServer) writeEntry(w http.ResponseWriter, ctx *core.FlowContext, key string) {
	entry, err := s.catalog.Resolve(key)
	if err != nil {
		ctx.Log.Error("catalog lookup failed", zap.String("key", key), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	resp, err := catalog.Render(entry)
	if err != nil {
		ctx.Log.Error("failed to render entry", zap.String("key", key), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.metrics.ObserveError(key, resp.StatusCode)
	s.writeBody(w, resp.StatusCode, contentTypeFHIR, []byte(resp.Content))
}

// fail answers 500 with the upstream internal error outcome.
func (s *HTTPServer) fail(w http.ResponseWriter, ctx *core.FlowContext) {
	s.metrics.ObserveRequest(metrics.OutcomeFailed, time.Since(ctx.StartTime).Seconds())
	body, err := upstream.Render([]byte(`{"id":"` + ctx.RequestID + `","issue":[{"code":"` + upstream.CodeInternalServerError + `"}]}`))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.writeBody(w, http.StatusInternalServerError, contentTypeFHIR, body)
}

func (s *HTTPServer) writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	w.Write(body)
}

func (s *HTTPServer) pathSuffix(path string) string {
	base := s.cfg.Server.BasePath
	if base == "" {
		return path
	}
	if path == base {
		return "/"
	}
	if strings.HasPrefix(path, base+"/") {
		return strings.TrimPrefix(path, base)
	}
	return path
}

// matchesPath reports whether path is route itself or below it.
func matchesPath(path, route string) bool {
	return path == route || strings.HasPrefix(path, route+"/")
}

// codeLabel bounds the label values of UpstreamMapped.
func codeLabel(code string) string {
	if upstream.Diagnostics(code) == "" {
		return otherCodeLabel
	}
	return code
}
