package gateway

import (
	"context"
	"log/slog"
	"slices"

	"github.com/funvibe/octbridge/internal/config"
)

// Local runs the interpreter binary directly on this machine.
type Local struct {
	cfg    config.GatewayConfig
	logger *slog.Logger
}

// NewLocal uses cfg as given; defaults are applied by the config package.
func NewLocal(cfg config.GatewayConfig, logger *slog.Logger) *Local {
	return &Local{cfg: cfg, logger: logger}
}

func (l *Local) Run(ctx context.Context, script string) (string, error) {
	args, stdin := interpreterArgs(l.cfg, script)
	return execute(ctx, l.logger, command{
		op:      "run",
		name:    l.cfg.Binary,
		args:    args,
		stdin:   stdin,
		dir:     l.cfg.Dir,
		env:     l.cfg.Env,
		timeout: l.cfg.Timeout,
	})
}

// interpreterArgs returns the interpreter arguments for script and, in
// stdin mode, the text to feed it.
func interpreterArgs(cfg config.GatewayConfig, script string) ([]string, *string) {
	args := slices.Clone(cfg.Args)
	if cfg.Input == config.InputStdin {
		return args, &script
	}
	return append(args, "--eval", script), nil
}
