// Package pipeline evaluates one script as a sequence of stages: append the
// dump directive, run the script through a gateway, parse the dump.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/funvibe/octbridge/internal/gateway"
	"github.com/funvibe/octbridge/internal/store"
)

// PipelineContext carries one evaluation through the stages.
type PipelineContext struct {
	Ctx   context.Context
	RunID string

	// Script is the caller's code, Source the text sent to the gateway.
	Script string
	Source string

	// Raw is the gateway's standard output.
	Raw   string
	Store *store.Store

	Errors []error
}

// NewPipelineContext tags ctx with a fresh run ID.
func NewPipelineContext(ctx context.Context, script string) *PipelineContext {
	id := uuid.NewString()
	return &PipelineContext{
		Ctx:    gateway.WithRunID(ctx, id),
		RunID:  id,
		Script: script,
	}
}

// Err returns the first recorded error, or nil.
func (c *PipelineContext) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Every processor is called; processors that
// depend on an earlier stage skip themselves once an error is recorded.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
