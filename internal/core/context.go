package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FlowContext carries one in-flight exchange through the pipeline
type FlowContext struct {
	context.Context
	RequestID string
	StartTime time.Time
	Log       *zap.Logger
	Vars      Variables
}

// NewFlowContext creates a FlowContext with a fresh request id. A nil vars
// gets an in-memory store and a nil logger is replaced by a no-op one.
func NewFlowContext(ctx context.Context, logger *zap.Logger, vars Variables) *FlowContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if vars == nil {
		vars = NewMemoryVariables()
	}
	id := uuid.NewString()
	return &FlowContext{
		Context:   ctx,
		RequestID: id,
		StartTime: time.Now(),
		Log:       logger.With(zap.String("request_id", id)),
		Vars:      vars,
	}
}
