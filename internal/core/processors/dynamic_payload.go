package processors

import (
	"go.uber.org/zap"

	"fhirgate/internal/core"
	"fhirgate/internal/core/upstream"
)

// DynamicPayload 将上游错误响应改写为网关的 OperationOutcome，
// 结果写入 Javascript_dynamic_response
type DynamicPayload struct{}

// NewDynamicPayload 创建响应改写处理器
func NewDynamicPayload() *DynamicPayload {
	return &DynamicPayload{}
}

// Name 返回处理器名称
func (p *DynamicPayload) Name() string {
	return "dynamic-payload"
}

// Priority 返回处理器优先级
func (p *DynamicPayload) Priority() int {
	return 50
}

// OnRequest 请求阶段无操作
func (p *DynamicPayload) OnRequest(ctx *core.FlowContext) error {
	return nil
}

// OnResponse 只处理 response.content；issue 列表不可用时返回
// upstream.ErrMalformedUpstreamBody
func (p *DynamicPayload) OnResponse(ctx *core.FlowContext) error {
	content, ok := core.GetString(ctx.Vars, core.VarResponseContent)
	if !ok {
		return nil
	}

	body, err := upstream.Render([]byte(content))
	if err != nil {
		return err
	}

	ctx.Vars.Set(core.VarDynamicResponse, string(body))
	ctx.Log.Debug("upstream error mapped", zap.Int("bytes", len(body)))
	return nil
}
