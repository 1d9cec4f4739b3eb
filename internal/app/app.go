// Package app wires the tap recognizer to its input sources, listeners and
// configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/taptrack/internal/config"
	"github.com/dshills/taptrack/internal/config/watcher"
	"github.com/dshills/taptrack/internal/event/propagate"
	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/input/replay"
	"github.com/dshills/taptrack/internal/logging"
	"github.com/dshills/taptrack/internal/plugin/lua"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty uses defaults.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// LogOutput defaults to os.Stderr, or to nothing while the terminal
	// mode owns the screen.
	LogOutput io.Writer

	// Watch reloads the configuration file when it changes.
	Watch bool

	// Scripts are Lua listener scripts loaded after the configured ones.
	Scripts []string

	// Record receives terminal input as a replayable recording when set.
	Record io.Writer
}

// Application owns the listener tree, the suppressor shared by every
// recognizer, and the components loaded from configuration.
type Application struct {
	opts Options
	cfg  config.Config
	log  *logging.Logger

	tree       *propagate.Tree
	registry   *propagate.Registry
	pool       *propagate.Pool
	acc        *propagate.Accumulator
	suppressor *gesture.WindowSuppressor
	clock      *replay.Clock

	lua     *lua.Host
	watcher *watcher.Watcher

	mu     sync.Mutex
	closed bool
}

// New loads configuration and starts every component.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	app.cfg = cfg

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Log.Level)
	if app.opts.LogOutput != nil {
		logCfg.Output = app.opts.LogOutput
	}
	app.log = logging.New(logCfg)

	app.tree = propagate.NewTree("root")
	app.registry = propagate.NewRegistry()
	app.pool = propagate.NewPool()
	app.acc = propagate.NewAccumulator(app.registry,
		propagate.WithPool(app.pool),
		propagate.WithLogger(app.log),
	)
	app.suppressor = cfg.Tap.Suppressor()
	app.clock = &replay.Clock{}

	app.lua = lua.NewHost(app.tree, app.registry, lua.WithLogger(app.log))
	scripts := append(append([]string{}, cfg.Plugins.Scripts...), app.opts.Scripts...)
	for _, script := range scripts {
		if err := app.lua.DoFile(script); err != nil {
			return &InitError{Component: "lua", Err: err}
		}
	}

	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := watcher.New(app.opts.ConfigPath, watcher.WithLogger(app.log))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		w.OnReload(app.applyConfig)
		app.watcher = w
	}

	app.log.Debug("started with suppress window %v", app.suppressor.Window())
	return nil
}

// applyConfig applies the settings that can change at runtime.
func (app *Application) applyConfig(cfg config.Config) {
	app.suppressor.SetWindow(cfg.Tap.EffectiveWindow())
	if app.opts.LogLevel == "" {
		app.log.SetLevel(logging.ParseLevel(cfg.Log.Level))
	}
	app.log.Info("suppress window now %v", app.suppressor.Window())
}

// Config returns the configuration loaded at startup.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Tree returns the target tree.
func (app *Application) Tree() *propagate.Tree {
	return app.tree
}

// Registry returns the listener registry.
func (app *Application) Registry() *propagate.Registry {
	return app.registry
}

// Suppressor returns the live trailing-pointer suppressor.
func (app *Application) Suppressor() *gesture.WindowSuppressor {
	return app.suppressor
}

// Recognizer creates a recognizer that emits into the application's
// accumulator. Each input source gets its own.
func (app *Application) Recognizer(opts ...gesture.Option) *gesture.Recognizer {
	base := []gesture.Option{
		gesture.WithAllocator(app.pool),
		gesture.WithLogger(app.log),
	}
	return gesture.New(app.suppressor, app.acc, append(base, opts...)...)
}

// Flush delivers queued taps to listeners.
func (app *Application) Flush(ctx context.Context) error {
	return app.acc.Flush(ctx)
}

// RunWatcher reloads configuration until ctx is done. It returns nil at once
// when watching is disabled.
func (app *Application) RunWatcher(ctx context.Context) error {
	if app.watcher == nil {
		return nil
	}
	return app.watcher.Run(ctx)
}

// Replay plays a recording and writes one line per tap to out.
func (app *Application) Replay(ctx context.Context, r io.Reader, out io.Writer) (replay.Summary, error) {
	if app.isClosed() {
		return replay.Summary{}, ErrClosed
	}

	rec := app.Recognizer(gesture.WithClock(app.clock.Now))
	p := replay.NewPlayer(rec, app.clock,
		replay.WithResolver(func(target string) any { return app.tree.Node(target) }),
		replay.WithTapHandler(func(r replay.Record, d *gesture.Descriptor) {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%.1f,%.1f\n",
				r.Time.UnixMilli(), d.Type, r.Target, d.Metadata.Source, d.Coordinate.X, d.Coordinate.Y)
		}),
		replay.WithAfterEvent(app.flushLogged),
		replay.WithLogger(app.log),
	)

	sum, err := p.Play(ctx, r)
	app.log.Info("replayed %d records: %d taps, %d suppressed, %d skipped, %d invalid",
		sum.Records, sum.Taps, rec.Stats().Suppressed, sum.Skipped, sum.Invalid)
	return sum, err
}

// flushLogged flushes and logs listener failures without stopping input.
func (app *Application) flushLogged(ctx context.Context) error {
	if err := app.acc.Flush(ctx); err != nil && ctx.Err() == nil {
		app.log.Warn("listener failures: %v", err)
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func (app *Application) isClosed() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.closed
}

// Close releases every component. It is safe to call more than once.
func (app *Application) Close() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return
	}
	app.closed = true

	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.lua != nil {
		app.lua.Close()
	}
}
