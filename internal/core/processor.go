package core

// Processor is the middleware interface for the gateway flow
type Processor interface {
	// Name returns the processor name
	Name() string
	// Priority returns the execution priority (lower = earlier)
	Priority() int
	// OnRequest runs in the request phase
	OnRequest(ctx *FlowContext) error
	// OnResponse runs once an upstream response is available
	OnResponse(ctx *FlowContext) error
}
