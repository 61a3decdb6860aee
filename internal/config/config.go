// Package config holds the octbridge.yaml configuration and the reserved
// names shared by the synthesizer, the dump directive and the parser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level octbridge.yaml configuration.
type Config struct {
	// Gateway selects and configures how scripts reach the interpreter.
	Gateway GatewayConfig `yaml:"gateway"`

	// Dump selects the dialect the interpreter prints its variables in.
	Dump DumpConfig `yaml:"dump"`

	Log LogConfig `yaml:"log"`

	// Concurrency bounds the number of scripts EvaluateAll runs at once.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// GatewayConfig describes the interpreter process.
type GatewayConfig struct {
	// Kind is "local" (run Binary directly) or "docker" (run it inside a
	// container). Defaults to "local".
	Kind string `yaml:"kind,omitempty"`

	// Binary is the interpreter executable. Defaults to "octave".
	Binary string `yaml:"binary,omitempty"`

	// Args are passed before the script. Defaults to DefaultArgs.
	Args []string `yaml:"args,omitempty"`

	// Input is "eval" (script passed as --eval <script>) or "stdin".
	Input string `yaml:"input,omitempty"`

	// Timeout bounds a single run. Zero means no limit beyond the caller's
	// context.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	Dir string            `yaml:"dir,omitempty"`
	Env map[string]string `yaml:"env,omitempty"`

	Docker DockerConfig `yaml:"docker,omitempty"`
}

// DockerConfig is used when Kind is "docker".
type DockerConfig struct {
	Binary string `yaml:"binary,omitempty"`
	Image  string `yaml:"image,omitempty"`

	// Container names an existing container to exec into. When empty a
	// container is started from Image and removed on Close.
	Container string `yaml:"container,omitempty"`
}

type DumpConfig struct {
	// Dialect is "display" or "save". Defaults to "display".
	Dialect string `yaml:"dialect,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an octbridge.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses octbridge.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for octbridge.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if none is
// found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

var (
	gatewayKinds = []string{"", GatewayLocal, GatewayDocker}
	inputModes   = []string{"", InputEval, InputStdin}
	dialects     = []string{"", DialectDisplay, DialectSave}
	logLevels    = []string{"", "debug", "info", "warn", "error"}
	logFormats   = []string{"", "auto", "text", "json"}
)

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	g := &c.Gateway
	if !slices.Contains(gatewayKinds, g.Kind) {
		return fmt.Errorf("%s: gateway.kind: unknown kind %q (want local or docker)", path, g.Kind)
	}
	if !slices.Contains(inputModes, g.Input) {
		return fmt.Errorf("%s: gateway.input: unknown mode %q (want eval or stdin)", path, g.Input)
	}
	if g.Timeout < 0 {
		return fmt.Errorf("%s: gateway.timeout: must not be negative", path)
	}
	if g.Kind != GatewayDocker && (g.Docker != DockerConfig{}) {
		return fmt.Errorf("%s: gateway.docker is only valid with kind: docker", path)
	}
	if !slices.Contains(dialects, c.Dump.Dialect) {
		return fmt.Errorf("%s: dump.dialect: unknown dialect %q (want display or save)", path, c.Dump.Dialect)
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("%s: log.level: unknown level %q", path, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("%s: log.format: unknown format %q", path, c.Log.Format)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%s: concurrency: must not be negative", path)
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	g := &c.Gateway
	if g.Kind == "" {
		g.Kind = GatewayLocal
	}
	if g.Binary == "" {
		g.Binary = DefaultBinary
	}
	if g.Args == nil {
		g.Args = slices.Clone(DefaultArgs)
	}
	if g.Input == "" {
		g.Input = InputEval
	}
	if g.Kind == GatewayDocker {
		if g.Docker.Binary == "" {
			g.Docker.Binary = DefaultDockerBinary
		}
		if g.Docker.Image == "" && g.Docker.Container == "" {
			g.Docker.Image = DefaultDockerImage
		}
	}
	if c.Dump.Dialect == "" {
		c.Dump.Dialect = DialectDisplay
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Directive returns the script suffix that prints every variable in the
// configured dialect.
func (d DumpConfig) Directive() string {
	if d.Dialect == DialectSave {
		return SaveDirective
	}
	return DisplayDirective
}
