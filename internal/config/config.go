// Package config loads the batchbench YAML configuration and sets up logging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// DefaultFile is the config file looked up in the working directory when no path is given.
const DefaultFile = "batchbench.yaml"

// Config is the top-level batchbench configuration.
type Config struct {
	// Culling enables frustum culling in frame updates.
	Culling bool `yaml:"culling"`

	// Workers is the number of goroutines packing batch groups. 0 picks NumCPU-1.
	Workers int `yaml:"workers"`

	// TickRate is the engine tick rate in ticks per second. 0 picks 60.
	TickRate float64 `yaml:"tick_rate"`

	// LogLevel is a zerolog level name. Empty picks "info".
	LogLevel string `yaml:"log_level"`

	// Profile enables periodic profiler reports.
	Profile bool `yaml:"profile"`

	Bench BenchConfig `yaml:"bench"`
}

// BenchConfig describes the headless stress scene.
type BenchConfig struct {
	// Objects is the number of batched instances spawned.
	Objects int `yaml:"objects"`

	// Meshes is the number of distinct meshes the instances are spread over.
	Meshes int `yaml:"meshes"`

	// ColoredRatio is the fraction of instances drawn with a per-instance color, in [0, 1].
	ColoredRatio float64 `yaml:"colored_ratio"`

	// Ticks is the number of engine ticks to run. 0 runs until interrupted.
	Ticks uint64 `yaml:"ticks"`

	// Spread is the half-size of the cube instances are scattered in.
	Spread float32 `yaml:"spread"`

	// Drift is the maximum per-second speed of an instance.
	Drift float32 `yaml:"drift"`

	// Churn is the number of instances toggled in or out of batching per tick.
	Churn int `yaml:"churn"`

	// Renderer selects the renderer backend: "null" or "wgpu".
	Renderer string `yaml:"renderer"`

	// Seed seeds the scene's random generator.
	Seed int64 `yaml:"seed"`
}

// Defaults returns the configuration used when no file or flag overrides a value.
//
// Returns:
//   - *Config: a new default configuration
func Defaults() *Config {
	return &Config{
		Culling:  true,
		Workers:  max(runtime.NumCPU()-1, 1),
		TickRate: 60,
		LogLevel: "info",
		Bench: BenchConfig{
			Objects:      10000,
			Meshes:       4,
			ColoredRatio: 0.25,
			Ticks:        600,
			Spread:       500,
			Drift:        20,
			Churn:        16,
			Renderer:     renderer.BackendTypeNull.String(),
			Seed:         1,
		},
	}
}

// Load reads the configuration at path on top of Defaults. An empty path loads DefaultFile when
// it exists in the working directory and returns the defaults otherwise.
//
// Parameters:
//   - path: the YAML file to read, may be empty
//
// Returns:
//   - *Config: the loaded configuration
//   - error: when the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Defaults, fills auto values and validates the result.
// Unknown keys are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the parsed configuration
//   - error: when the YAML is malformed or a value is out of range
func Parse(r io.Reader) (*Config, error) {
	cfg := Defaults()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	cfg.fillAuto()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillAuto replaces the zero values that mean "pick automatically" with their defaults.
func (c *Config) fillAuto() {
	def := Defaults()
	c.Workers = common.Coalesce(c.Workers, def.Workers)
	c.TickRate = common.Coalesce(c.TickRate, def.TickRate)
	c.LogLevel = common.Coalesce(c.LogLevel, def.LogLevel)
	c.Bench.Renderer = common.Coalesce(c.Bench.Renderer, def.Bench.Renderer)
}

// Validate reports the first out-of-range value.
//
// Returns:
//   - error: nil when the configuration is usable
func (c *Config) Validate() error {
	switch {
	case c.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	case c.TickRate < 0:
		return fmt.Errorf("tick_rate must be >= 0, got %g", c.TickRate)
	case c.Bench.Objects < 0:
		return fmt.Errorf("bench.objects must be >= 0, got %d", c.Bench.Objects)
	case c.Bench.Meshes < 1:
		return fmt.Errorf("bench.meshes must be >= 1, got %d", c.Bench.Meshes)
	case c.Bench.ColoredRatio < 0 || c.Bench.ColoredRatio > 1:
		return fmt.Errorf("bench.colored_ratio must be within [0, 1], got %g", c.Bench.ColoredRatio)
	case c.Bench.Spread <= 0:
		return fmt.Errorf("bench.spread must be > 0, got %g", c.Bench.Spread)
	case c.Bench.Drift < 0:
		return fmt.Errorf("bench.drift must be >= 0, got %g", c.Bench.Drift)
	case c.Bench.Churn < 0:
		return fmt.Errorf("bench.churn must be >= 0, got %d", c.Bench.Churn)
	}
	if _, err := renderer.ParseBackendType(c.Bench.Renderer); err != nil {
		return fmt.Errorf("bench.renderer: %w", err)
	}
	return nil
}

// Write encodes the configuration as YAML to w.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: when encoding fails
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config YAML: %w", err)
	}
	return enc.Close()
}
