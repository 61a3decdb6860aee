package pipeline

import (
	"log/slog"
	"strings"
	"time"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/dump"
	"github.com/funvibe/octbridge/internal/gateway"
)

// DirectiveProcessor appends the dump directive to the script.
type DirectiveProcessor struct {
	Directive string
}

func (dp *DirectiveProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	script := ctx.Script
	if script != "" && !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	ctx.Source = script + dp.Directive
	return ctx
}

// GatewayProcessor sends Source to the gateway and records its output.
type GatewayProcessor struct {
	Gateway gateway.Gateway
	Logger  *slog.Logger
}

func (gp *GatewayProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	start := time.Now()
	raw, err := gp.Gateway.Run(ctx.Ctx, ctx.Source)
	if err != nil {
		gp.Logger.Warn("gateway failed",
			slog.String("run_id", ctx.RunID),
			slog.Any("error", err))
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	gp.Logger.Debug("gateway returned",
		slog.String("run_id", ctx.RunID),
		slog.Int("bytes", len(raw)),
		slog.Duration("duration", time.Since(start)))
	ctx.Raw = raw
	return ctx
}

// DumpProcessor parses Raw into Store.
type DumpProcessor struct {
	Dialect string
	Logger  *slog.Logger
}

func (dp *DumpProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	switch dp.Dialect {
	case config.DialectDisplay:
		ctx.Store = dump.ParseDisplay(ctx.Raw)
	case config.DialectSave:
		ctx.Store = dump.ParseSave(ctx.Raw)
	default:
		ctx.Store = dump.Parse(ctx.Raw)
	}
	if degraded := ctx.Store.Degraded(); len(degraded) > 0 {
		dp.Logger.Debug("unparsed variable blocks",
			slog.String("run_id", ctx.RunID),
			slog.Any("names", degraded))
	}
	return ctx
}
