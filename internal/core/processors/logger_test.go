package processors

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fhirgate/internal/core"
)

// newTestContext 创建一个带 observer 的 FlowContext
func newTestContext(level zap.AtomicLevel) (*core.FlowContext, *observer.ObservedLogs) {
	observedCore, logs := observer.New(level)
	ctx := core.NewFlowContext(context.Background(), zap.New(observedCore, zap.AddCaller()), nil)
	return ctx, logs
}

func TestRequestLoggerOnRequest(t *testing.T) {
	ctx, logs := newTestContext(zap.NewAtomicLevelAt(zap.InfoLevel))
	ctx.Vars.Set(core.VarPathSuffix, "/event/1")
	ctx.Vars.Set(core.VarHeaderNames, []string{"X-Request-ID", "X-Correlation-ID", "Accept"})

	if err := NewRequestLogger().OnRequest(ctx); err != nil {
		t.Fatalf("OnRequest failed: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Message != "Request Started" {
		t.Errorf("Expected message 'Request Started', got '%s'", entry.Message)
	}

	fields := entry.ContextMap()
	expected := map[string]interface{}{
		"path":       "/event/1",
		"headers":    int64(3),
		"request_id": ctx.RequestID,
	}
	for key, want := range expected {
		got, found := fields[key]
		if !found {
			t.Errorf("Expected field '%s' not found in log", key)
			continue
		}
		if got != want {
			t.Errorf("Expected field '%s' to be '%v', got '%v'", key, want, got)
		}
	}

	// caller 应该显示 processors/logger.go
	if entry.Caller.File == "" || !strings.HasSuffix(entry.Caller.File, "logger.go") {
		t.Errorf("Expected caller in logger.go, got %s", entry.Caller.File)
	}
}

func TestRequestLoggerOnResponse(t *testing.T) {
	ctx, logs := newTestContext(zap.NewAtomicLevelAt(zap.InfoLevel))
	ctx.Vars.Set(core.VarResponseStatus, 422)

	if err := NewRequestLogger().OnResponse(ctx); err != nil {
		t.Fatalf("OnResponse failed: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "Upstream Responded" {
		t.Errorf("Expected message 'Upstream Responded', got '%s'", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if _, found := fields["latency"]; !found {
		t.Error("Expected 'latency' field not found in log")
	}
	if fields["status"] != int64(422) {
		t.Errorf("Expected status 422, got '%v'", fields["status"])
	}
}

func TestRequestLoggerRunsFirst(t *testing.T) {
	p := core.NewPipeline(
		NewErrorHandler(nil, nil, true),
		NewDynamicPayload(),
		NewRequestLogger(),
	)
	if name := p.Processors()[0].Name(); name != "request-logger" {
		t.Errorf("Expected request-logger first, got %s", name)
	}
}
