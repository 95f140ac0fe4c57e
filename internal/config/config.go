package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"induction-torque/internal/motor"
	"induction-torque/internal/render"
)

const defaultConfigFile = "config.yaml"

// Config is the service configuration. Precedence, lowest first: defaults,
// YAML file, MOTOR_* environment variables, command-line flags.
type Config struct {
	Addr            string          `yaml:"addr"`
	LogLevel        zapcore.Level   `yaml:"log_level"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
	Engine          EngineConfig    `yaml:"engine"`
	Plot            PlotConfig      `yaml:"plot"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

type TelemetryConfig struct {
	// Enabled turns on the OTLP trace and metric exporters.
	Enabled bool `yaml:"enabled"`
	// Logs additionally ships zap logs over OTLP.
	Logs bool `yaml:"logs"`
}

type EngineConfig struct {
	Variant         string  `yaml:"variant"`           // circuit | legacy
	SampleCount     int     `yaml:"sample_count"`      // 0 keeps the variant default
	SlipEpsilon     float64 `yaml:"slip_epsilon"`      // clamp for the s = 0 endpoint
	PowerBasis      string  `yaml:"power_basis"`       // rotor | stator
	ApproxPoleCount int     `yaml:"approx_pole_count"` // pole count of the coefficient path
}

type PlotConfig struct {
	WidthInches  float64 `yaml:"width_in"`
	HeightInches float64 `yaml:"height_in"`
	DPI          int     `yaml:"dpi"`
	Title        string  `yaml:"title"`
}

// RateLimitConfig throttles the interactive update endpoint per client.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        zapcore.InfoLevel,
		ShutdownTimeout: 5 * time.Second,
		Telemetry:       TelemetryConfig{Enabled: true},
		Engine: EngineConfig{
			Variant:         string(motor.VariantCircuit),
			SlipEpsilon:     motor.DefaultSlipEpsilon,
			PowerBasis:      string(motor.PowerBasisRotor),
			ApproxPoleCount: motor.DefaultApproxPoleCount,
		},
		Plot: PlotConfig{
			WidthInches:  10,
			HeightInches: 6,
			DPI:          100,
			Title:        "Torque vs. slip",
		},
		RateLimit: RateLimitConfig{RPS: 10, Burst: 20},
	}
}

// Load builds the configuration from args (without the program name) and
// the process environment.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	fs := pflag.NewFlagSet("torque-api", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", defaultConfigFile, "config file pathname")
	addr := fs.String("addr", "", "listen address")
	logLevel := fs.StringP("log-level", "l", "", "log level: debug, info, warn, error")
	variant := fs.String("variant", "", "slip-sweep variant: circuit or legacy")
	samples := fs.Int("samples", 0, "slip samples per curve (0 keeps the variant default)")
	powerBasis := fs.String("power-basis", "", "converted-power current: rotor or stator")
	telemetry := fs.Bool("telemetry", true, "export traces and metrics over OTLP")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if err := readFile(&cfg, *configFile, fs.Changed("config")); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	if fs.Changed("addr") {
		cfg.Addr = *addr
	}
	if fs.Changed("log-level") {
		if err := cfg.LogLevel.Set(*logLevel); err != nil {
			return Config{}, fmt.Errorf("log-level: %w", err)
		}
	}
	if fs.Changed("variant") {
		cfg.Engine.Variant = *variant
	}
	if fs.Changed("samples") {
		cfg.Engine.SampleCount = *samples
	}
	if fs.Changed("power-basis") {
		cfg.Engine.PowerBasis = *powerBasis
	}
	if fs.Changed("telemetry") {
		cfg.Telemetry.Enabled = *telemetry
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readFile overlays the YAML file onto cfg. A missing file is only an
// error when it was asked for explicitly.
func readFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("MOTOR_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("MOTOR_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.Set(v); err != nil {
			return fmt.Errorf("MOTOR_LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("MOTOR_VARIANT"); v != "" {
		cfg.Engine.Variant = v
	}
	if v := getenv("MOTOR_POWER_BASIS"); v != "" {
		cfg.Engine.PowerBasis = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MOTOR_SAMPLES", &cfg.Engine.SampleCount},
		{"MOTOR_APPROX_POLES", &cfg.Engine.ApproxPoleCount},
		{"MOTOR_RATE_LIMIT_BURST", &cfg.RateLimit.Burst},
	}
	for _, e := range ints {
		if v := getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"MOTOR_SLIP_EPSILON", &cfg.Engine.SlipEpsilon},
		{"MOTOR_RATE_LIMIT_RPS", &cfg.RateLimit.RPS},
	}
	for _, e := range floats {
		if v := getenv(e.key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = f
		}
	}

	if v := getenv("MOTOR_TELEMETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MOTOR_TELEMETRY: %w", err)
		}
		cfg.Telemetry.Enabled = b
	}
	return nil
}

// Validate checks for invalid configuration values.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0, got %s", c.ShutdownTimeout)
	}
	if _, err := motor.NewEngine(c.EngineOptions()); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		return fmt.Errorf("plot size must be > 0, got %gx%g in", c.Plot.WidthInches, c.Plot.HeightInches)
	}
	if c.Plot.DPI <= 0 {
		return fmt.Errorf("plot dpi must be > 0, got %d", c.Plot.DPI)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit rps and burst must be > 0, got %g/%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

// EngineOptions maps the engine section onto motor.Options.
func (c Config) EngineOptions() motor.Options {
	return motor.Options{
		Variant:         motor.Variant(c.Engine.Variant),
		SampleCount:     c.Engine.SampleCount,
		SlipEpsilon:     c.Engine.SlipEpsilon,
		PowerBasis:      motor.PowerBasis(c.Engine.PowerBasis),
		ApproxPoleCount: c.Engine.ApproxPoleCount,
	}
}

// PlotOptions maps the plot section onto render.Options.
func (c Config) PlotOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Width = vg.Length(c.Plot.WidthInches) * vg.Inch
	opts.Height = vg.Length(c.Plot.HeightInches) * vg.Inch
	opts.DPI = c.Plot.DPI
	if c.Plot.Title != "" {
		opts.Title = c.Plot.Title
	}
	return opts
}
