package gateway

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/logging"
)

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("no POSIX shell on windows")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found")
	}
	return sh
}

func shellGateway(t *testing.T, cfg config.GatewayConfig) *Local {
	cfg.Binary = requireShell(t)
	if cfg.Args == nil {
		cfg.Args = []string{}
	}
	if cfg.Input == "" {
		cfg.Input = config.InputStdin
	}
	return NewLocal(cfg, logging.Discard())
}

func TestFunc(t *testing.T) {
	var gw Gateway = Func(func(ctx context.Context, script string) (string, error) {
		return "echo: " + script, nil
	})
	out, err := gw.Run(context.Background(), "x = 1")
	if err != nil || out != "echo: x = 1" {
		t.Errorf("Run() = %q, %v", out, err)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: "run", RunID: "r1", ExitCode: 1, Stderr: "error: 'foo' undefined\nmore\n", Err: errors.New("exit status 1")}
	want := "gateway run failed [run r1] with exit code 1: exit status 1: error: 'foo' undefined"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := &Error{Op: "start", ExitCode: -1, Err: context.Canceled}
	if !errors.Is(wrapped, context.Canceled) {
		t.Error("errors.Is(context.Canceled) = false")
	}
}

func TestRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "abc")
	if got := RunIDFrom(ctx); got != "abc" {
		t.Errorf("RunIDFrom() = %q, want abc", got)
	}
	if got := RunIDFrom(context.Background()); got != "" {
		t.Errorf("RunIDFrom(empty) = %q", got)
	}
}

func TestNew(t *testing.T) {
	gw, err := New(config.GatewayConfig{Kind: config.GatewayLocal}, nil)
	if err != nil {
		t.Fatalf("New(local) failed: %v", err)
	}
	if _, ok := gw.(*Local); !ok {
		t.Errorf("New(local) = %T, want *Local", gw)
	}

	gw, err = New(config.GatewayConfig{Kind: config.GatewayDocker}, nil)
	if err != nil {
		t.Fatalf("New(docker) failed: %v", err)
	}
	if _, ok := gw.(Closer); !ok {
		t.Errorf("New(docker) = %T, want a Closer", gw)
	}

	if _, err := New(config.GatewayConfig{Kind: "ssh"}, nil); err == nil {
		t.Error("New(ssh) succeeded, want error")
	}
}

func TestLocal_Stdin(t *testing.T) {
	gw := shellGateway(t, config.GatewayConfig{})

	out, err := gw.Run(context.Background(), "echo hello\necho world\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "hello\nworld\n" {
		t.Errorf("Run() = %q, want %q", out, "hello\nworld\n")
	}
}

func TestLocal_Eval(t *testing.T) {
	gw := shellGateway(t, config.GatewayConfig{
		Args:  []string{"-c", `printf '%s|%s' "$0" "$1"`},
		Input: config.InputEval,
	})

	out, err := gw.Run(context.Background(), "x = 1;")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "--eval|x = 1;" {
		t.Errorf("Run() = %q, want the script after --eval", out)
	}
}

func TestLocal_EnvAndDir(t *testing.T) {
	dir := t.TempDir()
	gw := shellGateway(t, config.GatewayConfig{
		Dir: dir,
		Env: map[string]string{"OCTBRIDGE_TEST_VALUE": "42"},
	})

	out, err := gw.Run(context.Background(), `printf '%s\n' "$OCTBRIDGE_TEST_VALUE"; pwd`)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "42" {
		t.Fatalf("Run() = %q", out)
	}
	if filepath.Base(lines[1]) != filepath.Base(dir) {
		t.Errorf("working directory = %q, want %q", lines[1], dir)
	}
}

func TestLocal_NonZeroExit(t *testing.T) {
	gw := shellGateway(t, config.GatewayConfig{})
	ctx := WithRunID(context.Background(), "run-7")

	out, err := gw.Run(ctx, "echo partial\necho \"error: 'nope' undefined\" >&2\nexit 3\n")
	if out != "" {
		t.Errorf("Run() output = %q on failure, want empty", out)
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if gwErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", gwErr.ExitCode)
	}
	if gwErr.Stderr != "error: 'nope' undefined\n" {
		t.Errorf("Stderr = %q", gwErr.Stderr)
	}
	if gwErr.RunID != "run-7" || gwErr.Op != "run" {
		t.Errorf("RunID, Op = %q, %q", gwErr.RunID, gwErr.Op)
	}
}

func TestLocal_Timeout(t *testing.T) {
	gw := shellGateway(t, config.GatewayConfig{Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := gw.Run(context.Background(), "sleep 5\n")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("Run took %v after the timeout", elapsed)
	}
}

func TestLocal_MissingBinary(t *testing.T) {
	gw := NewLocal(config.GatewayConfig{Binary: "octbridge-no-such-binary", Input: config.InputStdin}, logging.Discard())

	_, err := gw.Run(context.Background(), "1")
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if gwErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", gwErr.ExitCode)
	}
}

const fakeDocker = `#!/bin/sh
echo "$*" >> "$OCTBRIDGE_FAKE_DOCKER_LOG"
case "$1" in
  run) echo 0123456789ab ;;
  exec) cat ;;
esac
`

func TestDocker_Lifecycle(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	bin := filepath.Join(dir, "docker")
	if err := os.WriteFile(bin, []byte(fakeDocker), 0o755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(dir, "calls.log")
	t.Setenv("OCTBRIDGE_FAKE_DOCKER_LOG", logPath)

	cfg := config.GatewayConfig{
		Kind:   config.GatewayDocker,
		Binary: "octave",
		Args:   []string{"--quiet"},
		Input:  config.InputStdin,
		Env:    map[string]string{"LC_ALL": "C"},
		Docker: config.DockerConfig{Binary: bin, Image: "octave:test"},
	}
	gw := NewDocker(cfg, logging.Discard())
	ctx := context.Background()

	out, err := gw.Run(ctx, "x = 1\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "x = 1\n" {
		t.Errorf("Run() = %q, want the script echoed by exec", out)
	}
	name := gw.Container()
	if !strings.HasPrefix(name, config.ContainerNamePrefix) {
		t.Fatalf("Container() = %q, want prefix %q", name, config.ContainerNamePrefix)
	}
	if _, err := gw.Run(ctx, "y = 2\n"); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if err := gw.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := gw.Close(ctx); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"run -d --rm --name " + name + " octave:test sleep infinity",
		"exec -i -e LC_ALL=C " + name + " octave --quiet",
		"exec -i -e LC_ALL=C " + name + " octave --quiet",
		"rm -f " + name,
	}
	if diff := cmp.Diff(want, strings.Split(strings.TrimSpace(string(data)), "\n")); diff != "" {
		t.Errorf("docker calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDocker_ExistingContainerIsKept(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	bin := filepath.Join(dir, "docker")
	if err := os.WriteFile(bin, []byte(fakeDocker), 0o755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(dir, "calls.log")
	t.Setenv("OCTBRIDGE_FAKE_DOCKER_LOG", logPath)

	gw := NewDocker(config.GatewayConfig{
		Binary: "octave",
		Args:   []string{},
		Input:  config.InputEval,
		Docker: config.DockerConfig{Binary: bin, Container: "lab"},
	}, logging.Discard())

	if _, err := gw.Run(context.Background(), "disp(1)"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := gw.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "exec lab octave --eval disp(1)" {
		t.Errorf("docker calls = %q", got)
	}
}
