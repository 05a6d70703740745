package core

import (
	"fmt"
	"sort"
)

// Pipeline holds a collection of processors and manages their execution
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a new pipeline instance
func NewPipeline(processors ...Processor) *Pipeline {
	p := &Pipeline{processors: make([]Processor, 0, len(processors))}
	for _, proc := range processors {
		p.AddProcessor(proc)
	}
	return p
}

// AddProcessor adds a processor to the pipeline. Processors are kept sorted by
// priority; equal priorities keep insertion order.
func (p *Pipeline) AddProcessor(processor Processor) {
	p.processors = append(p.processors, processor)
	sort.SliceStable(p.processors, func(i, j int) bool {
		return p.processors[i].Priority() < p.processors[j].Priority()
	})
}

// Processors returns the processors in execution order
func (p *Pipeline) Processors() []Processor {
	out := make([]Processor, len(p.processors))
	copy(out, p.processors)
	return out
}

// ExecuteRequest runs every processor's OnRequest in priority order
func (p *Pipeline) ExecuteRequest(ctx *FlowContext) error {
	for _, processor := range p.processors {
		if err := processor.OnRequest(ctx); err != nil {
			return fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return nil
}

// ExecuteResponse runs every processor's OnResponse in priority order
func (p *Pipeline) ExecuteResponse(ctx *FlowContext) error {
	for _, processor := range p.processors {
		if err := processor.OnResponse(ctx); err != nil {
			return fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return nil
}
