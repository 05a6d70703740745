package processors

import (
	"fmt"

	"go.uber.org/zap"

	"fhirgate/internal/core"
	"fhirgate/internal/core/catalog"
	"fhirgate/internal/core/validation"
)

// ErrorHandler 为当前请求选择错误目录条目，渲染后写入 errorContent 和 errorStatusCode
//
// 选择顺序：validation.error，然后是访问令牌 fault，最后是代理开关。
// 都不命中时不写任何输出，由宿主继续默认处理。
type ErrorHandler struct {
	catalog      *catalog.Catalog
	faults       *catalog.FaultMapper
	proxyEnabled bool
}

// NewErrorHandler 创建错误处理器
func NewErrorHandler(c *catalog.Catalog, faults *catalog.FaultMapper, proxyEnabled bool) *ErrorHandler {
	return &ErrorHandler{catalog: c, faults: faults, proxyEnabled: proxyEnabled}
}

// Name 返回处理器名称
func (h *ErrorHandler) Name() string {
	return "handle-errors"
}

// Priority 返回处理器优先级，必须在所有检查之后执行
func (h *ErrorHandler) Priority() int {
	return 100
}

// Keys 返回处理器自身可能选择的目录键
func (h *ErrorHandler) Keys() []string {
	return append(h.faults.Keys(), catalog.KeyProxyNotEnabled)
}

// OnRequest 选中条目时写入 errorKey、errorContent、errorStatusCode
func (h *ErrorHandler) OnRequest(ctx *core.FlowContext) error {
	key, status, ok := h.selectError(ctx.Vars)
	if !ok {
		return nil
	}

	entry, err := h.catalog.Resolve(key)
	if err != nil {
		return err
	}
	if status == 0 {
		status = entry.Status
	}
	resp, err := catalog.RenderWithStatus(entry, status)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", key, err)
	}

	ctx.Vars.Set(core.VarErrorKey, key)
	ctx.Vars.Set(core.VarErrorContent, resp.Content)
	ctx.Vars.Set(core.VarErrorStatusCode, resp.StatusCode)

	ctx.Log.Info("Request Rejected",
		zap.String("error_key", key),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

// OnResponse 响应阶段无操作
func (h *ErrorHandler) OnResponse(ctx *core.FlowContext) error {
	return nil
}

func (h *ErrorHandler) selectError(vars core.Variables) (string, int, bool) {
	if v, ok := vars.Get(core.VarValidationError); ok {
		if outcome, ok := v.(validation.Outcome); ok && !outcome.IsValid() {
			return outcome.ErrorName, outcome.StatusCode, true
		}
	}

	faultName, _ := core.GetString(vars, core.VarTokenFaultName)
	fault := catalog.Fault{
		Name:   faultName,
		Failed: core.GetBool(vars, core.VarTokenFailed),
	}
	if key, ok := h.faults.Translate(fault); ok {
		return key, 0, true
	}

	if !h.proxyEnabled {
		return catalog.KeyProxyNotEnabled, 0, true
	}
	return "", 0, false
}
