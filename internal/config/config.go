package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TAPTRACK_"

// Duration is a time.Duration written as a string such as "300ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration.
type Config struct {
	Tap      TapConfig      `toml:"tap"`
	Log      LogConfig      `toml:"log"`
	Terminal TerminalConfig `toml:"terminal"`
	Plugins  PluginConfig   `toml:"plugins"`
}

// TapConfig configures trailing-pointer suppression. The move threshold is
// fixed and not configurable.
type TapConfig struct {
	// SuppressTrailing enables suppression of pointer events after touches.
	SuppressTrailing bool `toml:"suppress_trailing"`

	// SuppressWindow is how long after a touch pointer events are dropped.
	SuppressWindow Duration `toml:"suppress_window"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// TerminalConfig configures the terminal input source.
type TerminalConfig struct {
	CellWidth  float64        `toml:"cell_width"`
	CellHeight float64        `toml:"cell_height"`
	Targets    []TargetConfig `toml:"targets"`
}

// TargetConfig binds a rectangle of cells to a target path.
type TargetConfig struct {
	Path   string `toml:"path"`
	X      int    `toml:"x"`
	Y      int    `toml:"y"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// PluginConfig lists Lua listener scripts.
type PluginConfig struct {
	Scripts []string `toml:"scripts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tap: TapConfig{
			SuppressTrailing: true,
			SuppressWindow:   Duration(gesture.DefaultSuppressWindow),
		},
		Log: LogConfig{Level: "info"},
		Terminal: TerminalConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
	}
}

// Load reads path over Default(), applies environment overrides and
// validates. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes TOML data over Default() and validates. It does not read the
// environment.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode("<data>", data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "SUPPRESS_WINDOW"); ok {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return &ValidationError{Path: "tap.suppress_window", Value: v, Message: err.Error()}
		}
		c.Tap.SuppressWindow = d
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error

	if c.Tap.SuppressWindow < 0 {
		errs = append(errs, &ValidationError{Path: "tap.suppress_window", Value: c.Tap.SuppressWindow.Std(), Message: "must not be negative"})
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"})
	}
	if c.Terminal.CellWidth <= 0 {
		errs = append(errs, &ValidationError{Path: "terminal.cell_width", Value: c.Terminal.CellWidth, Message: "must be positive"})
	}
	if c.Terminal.CellHeight <= 0 {
		errs = append(errs, &ValidationError{Path: "terminal.cell_height", Value: c.Terminal.CellHeight, Message: "must be positive"})
	}
	for i, t := range c.Terminal.Targets {
		name := fmt.Sprintf("terminal.targets[%d]", i)
		if strings.Trim(t.Path, "/") == "" {
			errs = append(errs, &ValidationError{Path: name + ".path", Value: t.Path, Message: "must not be empty"})
		}
		if t.Width <= 0 || t.Height <= 0 {
			errs = append(errs, &ValidationError{Path: name, Value: fmt.Sprintf("%dx%d", t.Width, t.Height), Message: "size must be positive"})
		}
	}

	return errors.Join(errs...)
}

// EffectiveWindow returns the suppression window, zero when suppression is
// disabled.
func (c TapConfig) EffectiveWindow() time.Duration {
	if !c.SuppressTrailing {
		return 0
	}
	return c.SuppressWindow.Std()
}

// Suppressor builds the trailing-pointer suppressor described by c. Apply
// later reloads with SetWindow(EffectiveWindow()).
func (c TapConfig) Suppressor() *gesture.WindowSuppressor {
	return gesture.NewWindowSuppressor(c.EffectiveWindow())
}
