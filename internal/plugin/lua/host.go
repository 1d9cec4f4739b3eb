package lua

import (
	"context"
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/taptrack/internal/event/propagate"
	"github.com/dshills/taptrack/internal/logging"
)

// Host owns a Lua state and the listeners its scripts register.
type Host struct {
	mu sync.Mutex
	L  *glua.LState

	tree     *propagate.Tree
	registry *propagate.Registry
	log      *logging.Logger

	nextID int
	offs   map[int]func()
	closed bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger used by tap.log and for listener errors.
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.log = l.WithComponent("lua")
		}
	}
}

// NewHost creates a host whose scripts resolve targets in tree and register
// listeners in reg.
func NewHost(tree *propagate.Tree, reg *propagate.Registry, opts ...HostOption) *Host {
	h := &Host{
		tree:     tree,
		registry: reg,
		log:      logging.Nop(),
		offs:     make(map[int]func()),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = glua.NewState(glua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.installAPI()
	return h
}

// openSafeLibraries opens the libraries that cannot reach the host system.
func openSafeLibraries(L *glua.LState) {
	glua.OpenBase(L)
	glua.OpenTable(L)
	glua.OpenString(L)
	glua.OpenMath(L)

	// Base exposes file loaders.
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, glua.LNil)
	}
}

func (h *Host) installAPI() {
	api := h.L.NewTable()
	h.L.SetFuncs(api, map[string]glua.LGFunction{
		"on":  h.luaOn,
		"off": h.luaOff,
		"log": h.luaLog,
	})
	h.L.SetGlobal("tap", api)
}

// DoFile runs a script file.
func (h *Host) DoFile(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}
	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScript, path, err)
	}
	return nil
}

// DoString runs a script chunk.
func (h *Host) DoString(src string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}
	if err := h.L.DoString(src); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

// Listeners returns the number of active script listeners.
func (h *Host) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.offs)
}

// Close removes every script listener and closes the state.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, off := range h.offs {
		off()
		delete(h.offs, id)
	}
	h.L.Close()
}

// tap.on(target, name, fn) -> id
func (h *Host) luaOn(L *glua.LState) int {
	target := L.CheckString(1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)

	node := h.tree.Node(target)
	off, err := h.registry.Listen(node, name, &scriptListener{host: h, fn: fn})
	if err != nil {
		L.RaiseError("tap.on: %v", err)
		return 0
	}

	h.nextID++
	h.offs[h.nextID] = off
	L.Push(glua.LNumber(h.nextID))
	return 1
}

// tap.off(id) -> bool
func (h *Host) luaOff(L *glua.LState) int {
	id := L.CheckInt(1)
	off, ok := h.offs[id]
	if ok {
		off()
		delete(h.offs, id)
	}
	L.Push(glua.LBool(ok))
	return 1
}

// tap.log(msg)
func (h *Host) luaLog(L *glua.LState) int {
	h.log.Info("%s", L.CheckString(1))
	return 0
}

// scriptListener adapts a Lua function to propagate.Listener.
type scriptListener struct {
	host *Host
	fn   *glua.LFunction
}

// HandleTap implements propagate.Listener.
func (s *scriptListener) HandleTap(ctx context.Context, ev *propagate.Event) error {
	h := s.host
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	L := h.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(glua.P{Fn: s.fn, NRet: 1, Protect: true}, eventTable(L, ev)); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	if ret == glua.LFalse {
		ev.StopPropagation()
	}
	return nil
}

func eventTable(L *glua.LState, ev *propagate.Event) *glua.LTable {
	t := L.NewTable()
	t.RawSetString("phase", glua.LString(ev.Phase.String()))
	if ev.Target != nil {
		t.RawSetString("target", glua.LString(ev.Target.String()))
	}
	if ev.CurrentTarget != nil {
		t.RawSetString("current", glua.LString(ev.CurrentTarget.String()))
	}
	if d := ev.Tap; d != nil {
		t.RawSetString("type", glua.LString(d.Type))
		t.RawSetString("id", glua.LString(d.Metadata.ID))
		t.RawSetString("source", glua.LString(d.Metadata.Source.String()))
		if d.Coordinate.Valid() {
			t.RawSetString("x", glua.LNumber(d.Coordinate.X))
			t.RawSetString("y", glua.LNumber(d.Coordinate.Y))
		}
	}
	return t
}
