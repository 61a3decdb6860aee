package gateway

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process
// is killed, since interpreter children may keep them open.
const waitDelay = 2 * time.Second

// command is one subprocess invocation.
type command struct {
	op      string
	name    string
	args    []string
	stdin   *string
	dir     string
	env     map[string]string
	timeout time.Duration
}

// execute runs c and returns its standard output. Standard error is kept
// apart and only surfaces in the returned *Error.
func execute(ctx context.Context, logger *slog.Logger, c command) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Dir = c.dir
	cmd.WaitDelay = waitDelay
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), envList(c.env)...)
	}
	if c.stdin != nil {
		cmd.Stdin = strings.NewReader(*c.stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runID := RunIDFrom(ctx)
	start := time.Now()
	err := cmd.Run()
	logger.Debug("gateway command finished",
		slog.String("op", c.op),
		slog.String("run_id", runID),
		slog.String("binary", c.name),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil))

	if err != nil {
		gwErr := &Error{Op: c.op, RunID: runID, ExitCode: -1, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gwErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			gwErr.Err = ctxErr
		}
		return "", gwErr
	}
	return stdout.String(), nil
}

// envList renders env as sorted KEY=VALUE pairs.
func envList(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	list := make([]string, len(keys))
	for i, k := range keys {
		list[i] = k + "=" + env[k]
	}
	return list
}
