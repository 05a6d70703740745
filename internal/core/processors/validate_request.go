package processors

import (
	"go.uber.org/zap"

	"fhirgate/internal/core"
	"fhirgate/internal/core/validation"
)

// RequestValidator 对请求变量执行校验，结果写入 validation.error
type RequestValidator struct {
	validator *validation.Validator
}

// NewRequestValidator 创建请求校验处理器
func NewRequestValidator(v *validation.Validator) *RequestValidator {
	return &RequestValidator{validator: v}
}

// Name 返回处理器名称
func (p *RequestValidator) Name() string {
	return "validate-request"
}

// Priority 返回处理器优先级，在令牌校验之后执行
func (p *RequestValidator) Priority() int {
	return 20
}

// OnRequest 校验失败时写入 Outcome，通过时清空 validation.error
func (p *RequestValidator) OnRequest(ctx *core.FlowContext) error {
	path, _ := core.GetString(ctx.Vars, core.VarPathSuffix)
	outcome := p.validator.Validate(validation.Snapshot{
		PathSuffix:  path,
		HeaderNames: core.GetStrings(ctx.Vars, core.VarHeaderNames),
	})

	if outcome.IsValid() {
		ctx.Vars.Set(core.VarValidationError, nil)
		return nil
	}

	ctx.Log.Debug("request failed validation",
		zap.String("error", outcome.ErrorName),
		zap.Int("status", outcome.StatusCode),
	)
	ctx.Vars.Set(core.VarValidationError, outcome)
	return nil
}

// OnResponse 响应阶段无操作
func (p *RequestValidator) OnResponse(ctx *core.FlowContext) error {
	return nil
}
