// Package gateway runs interpreter scripts and returns what they print.
//
// A Gateway is the only blocking collaborator in octbridge: it receives
// the complete script (user code followed by the dump directive) and
// returns the interpreter's standard output. Failures are reported as
// *Error and are meant to reach the caller unchanged.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/logging"
)

// Gateway executes one script and returns its standard output.
type Gateway interface {
	Run(ctx context.Context, script string) (string, error)
}

// Closer is implemented by gateways that hold resources between runs.
type Closer interface {
	Close(ctx context.Context) error
}

// Func adapts a plain function to the Gateway interface.
type Func func(ctx context.Context, script string) (string, error)

func (f Func) Run(ctx context.Context, script string) (string, error) {
	return f(ctx, script)
}

// Error describes a failed interpreter or container invocation.
type Error struct {
	// Op is the step that failed: "run", "start" or "close".
	Op    string
	RunID string
	// ExitCode is -1 when the process did not exit normally.
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "gateway %s failed", e.Op)
	if e.RunID != "" {
		fmt.Fprintf(&sb, " [run %s]", e.RunID)
	}
	if e.ExitCode >= 0 {
		fmt.Fprintf(&sb, " with exit code %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		first, _, _ := strings.Cut(msg, "\n")
		fmt.Fprintf(&sb, ": %s", first)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

type runIDKey struct{}

// WithRunID attaches a run identifier that gateways copy into their
// errors and log records.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the identifier set by WithRunID, or "".
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// New builds the gateway selected by cfg.Kind.
func New(cfg config.GatewayConfig, logger *slog.Logger) (Gateway, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	switch cfg.Kind {
	case config.GatewayLocal, "":
		return NewLocal(cfg, logger), nil
	case config.GatewayDocker:
		return NewDocker(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown gateway kind %q", cfg.Kind)
}
