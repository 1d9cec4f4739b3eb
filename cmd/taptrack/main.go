// Package main is the entry point for the taptrack tap recognizer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taptrack/internal/app"
	"github.com/dshills/taptrack/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, paths, args := parseFlags()
	if len(args) == 0 {
		flag.Usage()
		return 2
	}

	if paths.record != "" {
		f, err := os.Create(paths.record)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.Record = f
	}
	if paths.log != "" {
		f, err := os.OpenFile(paths.log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		opts.LogOutput = f
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	// Handle signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := application.RunWatcher(ctx); err != nil && !errors.Is(err, context.Canceled) {
			application.Logger().Warn("config watcher stopped: %v", err)
		}
	}()

	switch args[0] {
	case "replay":
		err = runReplay(ctx, application, args[1:])
	case "term":
		err = runTerm(ctx, application)
	case "types":
		for _, cfg := range application.Recognizer().EventTypes() {
			fmt.Printf("%s\tbubbled=%s captured=%s\n", cfg.Name, cfg.Phases.Bubbled, cfg.Phases.Captured)
			deps := make([]string, len(cfg.Dependencies))
			for i, d := range cfg.Dependencies {
				deps[i] = d.String()
			}
			fmt.Printf("\tdependencies=%s\n", strings.Join(deps, ","))
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		flag.Usage()
		return 2
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runReplay(ctx context.Context, application *app.Application, args []string) error {
	if len(args) == 0 {
		_, err := application.Replay(ctx, os.Stdin, os.Stdout)
		return err
	}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = application.Replay(ctx, f, os.Stdout)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func runTerm(ctx context.Context, application *app.Application) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	return application.RunTerminal(ctx, screen)
}

// outputPaths are files opened by run before the application starts.
type outputPaths struct {
	record string
	log    string
}

func parseFlags() (app.Options, outputPaths, []string) {
	var opts app.Options
	var paths outputPaths
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Watch, "watch", false, "Reload the configuration file when it changes")
	flag.Func("script", "Lua listener script to load (repeatable)", func(s string) error {
		opts.Scripts = append(opts.Scripts, s)
		return nil
	})
	flag.StringVar(&paths.record, "record", "", "Write terminal input to a recording file")
	flag.StringVar(&paths.log, "log-file", "", "Append log output to a file (term mode logs nowhere otherwise)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "taptrack - tap gesture recognizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: taptrack [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  replay [files...]   Replay JSON-lines recordings (stdin when none)\n")
		fmt.Fprintf(os.Stderr, "  term                Recognize mouse taps in the terminal\n")
		fmt.Fprintf(os.Stderr, "  types               Print the event types the recognizer publishes\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  taptrack replay session.jsonl\n")
		fmt.Fprintf(os.Stderr, "  taptrack -c taptrack.toml -watch term\n")
		fmt.Fprintf(os.Stderr, "  taptrack -script listeners.lua replay session.jsonl\n")
		fmt.Fprintf(os.Stderr, "  taptrack -record session.jsonl term\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("taptrack %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	return opts, paths, flag.Args()
}
