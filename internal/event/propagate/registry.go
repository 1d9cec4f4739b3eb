package propagate

import "sync"

type registration struct {
	id       uint64
	listener Listener
}

type registryKey struct {
	node *Node
	name string
}

// Registry holds listeners by node and registration name.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[registryKey][]registration
	nextID uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[registryKey][]registration)}
}

// Listen registers l on node under name. Listeners on the same node and name
// run in registration order. The returned function removes the listener and
// is safe to call more than once.
func (r *Registry) Listen(node *Node, name string, l Listener) (func(), error) {
	switch {
	case node == nil:
		return nil, ErrNilNode
	case l == nil:
		return nil, ErrNilListener
	case name == "":
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	key := registryKey{node: node, name: name}
	r.byKey[key] = append(r.byKey[key], registration{id: id, listener: l})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(key, id) })
	}, nil
}

func (r *Registry) remove(key registryKey, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.byKey[key]
	for i, reg := range regs {
		if reg.id == id {
			r.byKey[key] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(r.byKey[key]) == 0 {
		delete(r.byKey, key)
	}
}

// Listeners returns a copy of the listeners on node under name.
func (r *Registry) Listeners(node *Node, name string) []Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.byKey[registryKey{node: node, name: name}]
	if len(regs) == 0 {
		return nil
	}
	out := make([]Listener, len(regs))
	for i, reg := range regs {
		out[i] = reg.listener
	}
	return out
}

// Count returns the number of registered listeners.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, regs := range r.byKey {
		n += len(regs)
	}
	return n
}
