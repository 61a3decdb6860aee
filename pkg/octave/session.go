// Package octave drives a GNU Octave interpreter from Go: it evaluates
// scripts, calls interpreter functions with Go arguments and reads the
// resulting variables back as typed values.
//
// A Session owns a gateway (a local process or a docker container) and a
// dump dialect:
//
//	cfg, _ := octave.LoadConfig("octbridge.yaml")
//	s, _ := octave.NewFromConfig(cfg, os.Stderr)
//	defer s.Close(ctx)
//
//	primes, err := octave.CallAs[[]int](ctx, s, "primes", 100)
package octave

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/gateway"
	"github.com/funvibe/octbridge/internal/logging"
	"github.com/funvibe/octbridge/internal/pipeline"
	"github.com/funvibe/octbridge/internal/store"
	"github.com/funvibe/octbridge/internal/synth"
	"github.com/funvibe/octbridge/internal/value"
)

// Options configure a Session built around an existing Gateway.
type Options struct {
	// Dialect is DialectDisplay (the default) or DialectSave.
	Dialect string
	// Concurrency bounds EvaluateAll. Defaults to 4.
	Concurrency int
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

// Session evaluates scripts through one gateway. It is safe for
// concurrent use as long as the gateway is.
type Session struct {
	gateway     gateway.Gateway
	pipeline    *pipeline.Pipeline
	marshaller  *Marshaller
	logger      *slog.Logger
	concurrency int
}

// New creates a Session that runs scripts through gw.
func New(gw gateway.Gateway, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Dialect == "" {
		opts.Dialect = config.DialectDisplay
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	dumpCfg := config.DumpConfig{Dialect: opts.Dialect}
	return &Session{
		gateway: gw,
		pipeline: pipeline.New(
			&pipeline.DirectiveProcessor{Directive: dumpCfg.Directive()},
			&pipeline.GatewayProcessor{Gateway: gw, Logger: opts.Logger},
			&pipeline.DumpProcessor{Dialect: opts.Dialect, Logger: opts.Logger},
		),
		marshaller:  NewMarshaller(),
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
	}
}

// NewFromConfig builds the configured gateway and a logger writing to
// logOut. A nil cfg means config.Default(); a nil logOut discards logs.
func NewFromConfig(cfg *config.Config, logOut io.Writer) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.Discard()
	if logOut != nil {
		logger = logging.New(logOut, cfg.Log)
	}
	gw, err := gateway.New(cfg.Gateway, logger)
	if err != nil {
		return nil, err
	}
	return New(gw, Options{
		Dialect:     cfg.Dump.Dialect,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}), nil
}

// Marshaller returns the converter used by Invoke and CallAs.
func (s *Session) Marshaller() *Marshaller {
	return s.marshaller
}

// Eval runs script and returns every variable it leaves bound. Gateway
// failures are returned unchanged.
func (s *Session) Eval(ctx context.Context, script string) (*store.Store, error) {
	pctx := pipeline.NewPipelineContext(ctx, script)
	s.logger.Debug("run started", slog.String("run_id", pctx.RunID))

	pctx = s.pipeline.Run(pctx)
	if err := pctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("run finished",
		slog.String("run_id", pctx.RunID),
		slog.Int("variables", pctx.Store.Len()))
	return pctx.Store, nil
}

// Call evaluates function(args...) and returns its result. A result that
// could not be parsed is returned as an Undefined value, not an error.
func (s *Session) Call(ctx context.Context, function string, args ...value.Value) (value.Value, error) {
	script, err := synth.BuildCall(function, args)
	if err != nil {
		return nil, err
	}
	st, err := s.Eval(ctx, script)
	if err != nil {
		return nil, err
	}
	v, ok := st.Value(config.OutputVarName)
	if !ok {
		return nil, store.NewNotFoundError(config.OutputVarName)
	}
	return v, nil
}

// CallN evaluates [r1, ..., rN] = function(args...) and returns the N
// results in order.
func (s *Session) CallN(ctx context.Context, function string, nout int, args ...value.Value) ([]value.Value, error) {
	script, err := synth.BuildCallN(function, nout, args)
	if err != nil {
		return nil, err
	}
	st, err := s.Eval(ctx, script)
	if err != nil {
		return nil, err
	}
	results := make([]value.Value, nout)
	for k := range results {
		name := synth.OutputVar(k + 1)
		v, ok := st.Value(name)
		if !ok {
			return nil, store.NewNotFoundError(name)
		}
		results[k] = v
	}
	return results, nil
}

// Invoke is Call with Go arguments converted by the Marshaller.
func (s *Session) Invoke(ctx context.Context, function string, args ...any) (value.Value, error) {
	values := make([]value.Value, len(args))
	for i, arg := range args {
		v, err := s.marshaller.ToValue(arg)
		if err != nil {
			return nil, synth.NewArgumentError(function, i+1, err)
		}
		values[i] = v
	}
	return s.Call(ctx, function, values...)
}

// Function is an interpreter function bound to a Session.
type Function func(ctx context.Context, args ...any) (value.Value, error)

// Wrap returns a reusable callable for function.
func (s *Session) Wrap(function string) Function {
	return func(ctx context.Context, args ...any) (value.Value, error) {
		return s.Invoke(ctx, function, args...)
	}
}

// CallAs invokes function and decodes its result into T.
func CallAs[T any](ctx context.Context, s *Session, function string, args ...any) (T, error) {
	var out T
	v, err := s.Invoke(ctx, function, args...)
	if err != nil {
		return out, err
	}
	if err := s.marshaller.Decode(v, &out); err != nil {
		return out, fmt.Errorf("decoding result of %s: %w", function, err)
	}
	return out, nil
}

// EvaluateAll evaluates scripts concurrently, at most Concurrency at a
// time, and returns their stores in input order. The first failure
// cancels the remaining runs.
func (s *Session) EvaluateAll(ctx context.Context, scripts []string) ([]*store.Store, error) {
	results := make([]*store.Store, len(scripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, script := range scripts {
		g.Go(func() error {
			st, err := s.Eval(gctx, script)
			if err != nil {
				return err
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the gateway's resources, such as a sandbox container.
func (s *Session) Close(ctx context.Context) error {
	if c, ok := s.gateway.(gateway.Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
