package processors

import (
	"go.uber.org/zap"

	"fhirgate/internal/core"
	"fhirgate/internal/core/security"
)

// TokenVerifier 校验 Authorization 中的访问令牌，结果写入 oauthV2 fault 变量
type TokenVerifier struct {
	verifier *security.Verifier
}

// NewTokenVerifier 创建令牌校验处理器
func NewTokenVerifier(v *security.Verifier) *TokenVerifier {
	return &TokenVerifier{verifier: v}
}

// Name 返回处理器名称
func (p *TokenVerifier) Name() string {
	return "verify-access-token"
}

// Priority 返回处理器优先级，在请求校验之前执行
func (p *TokenVerifier) Priority() int {
	return 10
}

// OnRequest 设置 failed 标记；令牌有效时清空 fault.name
func (p *TokenVerifier) OnRequest(ctx *core.FlowContext) error {
	header, _ := core.GetString(ctx.Vars, core.VarAuthorization)
	res := p.verifier.Verify(header)

	ctx.Vars.Set(core.VarTokenFailed, res.Failed)
	if res.FaultName == "" {
		ctx.Vars.Set(core.VarTokenFaultName, nil)
		return nil
	}
	ctx.Vars.Set(core.VarTokenFaultName, res.FaultName)
	ctx.Log.Debug("access token rejected", zap.String("fault", res.FaultName))
	return nil
}

// OnResponse 响应阶段无操作
func (p *TokenVerifier) OnResponse(ctx *core.FlowContext) error {
	return nil
}
