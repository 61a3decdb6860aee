package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/octbridge/internal/config"
)

// Docker runs the interpreter inside a container. Unless a container is
// configured, the first Run starts a detached one from the configured
// image, and Close removes it.
type Docker struct {
	cfg    config.GatewayConfig
	logger *slog.Logger

	mu        sync.Mutex
	container string
	owned     bool
}

func NewDocker(cfg config.GatewayConfig, logger *slog.Logger) *Docker {
	return &Docker{cfg: cfg, logger: logger, container: cfg.Docker.Container}
}

// Container returns the container scripts are executed in, or "" before
// Start.
func (d *Docker) Container() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.container
}

// Start creates the sandbox container if there is none yet.
func (d *Docker) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.container != "" {
		return nil
	}

	name := config.ContainerNamePrefix + uuid.NewString()
	_, err := execute(ctx, d.logger, command{
		op:   "start",
		name: d.cfg.Docker.Binary,
		args: []string{"run", "-d", "--rm", "--name", name, d.cfg.Docker.Image, "sleep", "infinity"},
	})
	if err != nil {
		return err
	}
	d.container = name
	d.owned = true
	d.logger.Info("sandbox container started",
		slog.String("container", name),
		slog.String("image", d.cfg.Docker.Image))
	return nil
}

func (d *Docker) Run(ctx context.Context, script string) (string, error) {
	if err := d.Start(ctx); err != nil {
		return "", err
	}

	iargs, stdin := interpreterArgs(d.cfg, script)
	args := []string{"exec"}
	if stdin != nil {
		args = append(args, "-i")
	}
	if d.cfg.Dir != "" {
		args = append(args, "-w", d.cfg.Dir)
	}
	for _, kv := range envList(d.cfg.Env) {
		args = append(args, "-e", kv)
	}
	args = append(args, d.Container(), d.cfg.Binary)
	args = append(args, iargs...)

	return execute(ctx, d.logger, command{
		op:      "run",
		name:    d.cfg.Docker.Binary,
		args:    args,
		stdin:   stdin,
		timeout: d.cfg.Timeout,
	})
}

// Close force-removes a container created by Start. Configured
// containers are left alone.
func (d *Docker) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.owned {
		return nil
	}

	_, err := execute(ctx, d.logger, command{
		op:   "close",
		name: d.cfg.Docker.Binary,
		args: []string{"rm", "-f", d.container},
	})
	if err != nil {
		return err
	}
	d.logger.Info("sandbox container removed", slog.String("container", d.container))
	d.container = ""
	d.owned = false
	return nil
}
