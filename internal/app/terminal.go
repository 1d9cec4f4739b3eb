package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/taptrack/internal/event/propagate"
	"github.com/dshills/taptrack/internal/input/gesture"
	"github.com/dshills/taptrack/internal/input/replay"
	"github.com/dshills/taptrack/internal/input/source"
)

// Regions builds the terminal hit regions from the configured targets.
func (app *Application) Regions() source.Regions {
	targets := app.cfg.Terminal.Targets
	rs := make(source.Regions, 0, len(targets))
	for _, t := range targets {
		rs = append(rs, source.Region{
			X: t.X, Y: t.Y, Width: t.Width, Height: t.Height,
			Target: app.tree.Node(t.Path),
		})
	}
	return rs
}

// RunTerminal reads mouse input from screen until Escape, Ctrl-C or ctx is
// done. Configured targets are drawn as boxes and the last tap is shown on
// the bottom line.
func (app *Application) RunTerminal(ctx context.Context, screen tcell.Screen) error {
	if app.isClosed() {
		return ErrClosed
	}

	regions := app.Regions()
	status := "tap a box; Esc quits"

	var sink source.Sink = app.Recognizer()
	var rec *replay.Recorder
	if app.opts.Record != nil {
		rec = replay.NewRecorder(app.opts.Record, replay.WithTargetName(app.targetPath))
		sink = rec.Wrap(sink)
	}

	term := source.NewTerminal(screen, sink,
		source.WithNormalizer(source.NewNormalizer(app.cfg.Terminal.CellWidth, app.cfg.Terminal.CellHeight)),
		source.WithHitTester(regions),
		source.WithTapHandler(func(d *gesture.Descriptor) {
			status = fmt.Sprintf("%s on %v at %.0f,%.0f", d.Type, d.Target, d.Coordinate.X, d.Coordinate.Y)
		}),
		source.WithAfterEvent(func(ctx context.Context) error {
			err := app.flushLogged(ctx)
			draw(screen, regions, status)
			return err
		}),
		source.WithLogger(app.log),
	)
	if err := term.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer term.Shutdown()

	if out, restore := app.terminalLogOutput(); out != nil {
		app.log.SetOutput(out)
		defer app.log.SetOutput(restore)
	}

	draw(screen, regions, status)
	err := term.Run(ctx)
	if rec != nil {
		app.log.Info("recorded %d events", rec.Count())
		if rerr := rec.Err(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// terminalLogOutput returns where to log while tcell owns the screen, and
// the writer to restore afterwards. out is nil when an explicit output was
// configured.
func (app *Application) terminalLogOutput() (out, restore io.Writer) {
	if app.opts.LogOutput != nil {
		return nil, nil
	}
	return io.Discard, os.Stderr
}

// targetPath names a tree node by its path below the root, the form the
// replay resolver expects.
func (app *Application) targetPath(target any) string {
	n, ok := target.(*propagate.Node)
	if !ok || n == nil {
		return ""
	}
	path := n.Path()
	names := make([]string, 0, len(path)-1)
	for _, p := range path[1:] {
		names = append(names, p.Name())
	}
	return strings.Join(names, "/")
}

func draw(screen tcell.Screen, regions source.Regions, status string) {
	screen.Clear()
	box := tcell.StyleDefault.Reverse(true)
	for _, r := range regions {
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				screen.SetContent(x, y, ' ', nil, box)
			}
		}
		putString(screen, r.X, r.Y, fmt.Sprint(r.Target), box)
	}
	_, h := screen.Size()
	putString(screen, 0, h-1, status, tcell.StyleDefault)
	screen.Show()
}

func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
