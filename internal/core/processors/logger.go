package processors

import (
	"time"

	"go.uber.org/zap"

	"fhirgate/internal/core"
)

// RequestLogger 是一个记录请求日志的处理器
type RequestLogger struct {
	name     string
	priority int
}

// NewRequestLogger 创建一个新的请求日志处理器
func NewRequestLogger() *RequestLogger {
	return &RequestLogger{
		name:     "request-logger",
		priority: -100, // 必须是第一个执行
	}
}

// Name 返回处理器名称
func (r *RequestLogger) Name() string {
	return r.name
}

// Priority 返回处理器优先级
func (r *RequestLogger) Priority() int {
	return r.priority
}

// OnRequest 记录请求开始，request_id 已经通过 With() 注入
func (r *RequestLogger) OnRequest(ctx *core.FlowContext) error {
	path, _ := core.GetString(ctx.Vars, core.VarPathSuffix)
	ctx.Log.Info("Request Started",
		zap.String("path", path),
		zap.Int("headers", len(core.GetStrings(ctx.Vars, core.VarHeaderNames))),
	)
	return nil
}

// OnResponse 记录上游响应
func (r *RequestLogger) OnResponse(ctx *core.FlowContext) error {
	status, _ := core.GetInt(ctx.Vars, core.VarResponseStatus)
	ctx.Log.Info("Upstream Responded",
		zap.Int("status", status),
		zap.Duration("latency", time.Since(ctx.StartTime)),
	)
	return nil
}
