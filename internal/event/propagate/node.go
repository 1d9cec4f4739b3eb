package propagate

import (
	"strings"
	"sync"
)

// Node is a dispatch target. A node's ancestors are fixed at creation.
type Node struct {
	name   string
	parent *Node
}

// NewNode creates a node under parent. A nil parent makes a root.
func NewNode(name string, parent *Node) *Node {
	return &Node{name: name, parent: parent}
}

// Name returns the node name.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// Parent returns the parent node, nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Path returns the nodes from the root down to n.
func (n *Node) Path() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// String returns the slash-joined path, e.g. "root/toolbar/save".
func (n *Node) String() string {
	path := n.Path()
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = p.name
	}
	return strings.Join(names, "/")
}

// Tree is a set of nodes addressed by slash-separated paths under one root.
type Tree struct {
	mu    sync.Mutex
	root  *Node
	nodes map[string]*Node
}

// NewTree creates a tree with the named root.
func NewTree(root string) *Tree {
	r := NewNode(root, nil)
	return &Tree{root: r, nodes: map[string]*Node{"": r}}
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Node returns the node at path relative to the root, creating missing
// nodes. An empty path is the root.
func (t *Tree) Node(path string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	key := ""
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if key == "" {
			key = part
		} else {
			key += "/" + part
		}
		next, ok := t.nodes[key]
		if !ok {
			next = NewNode(part, cur)
			t.nodes[key] = next
		}
		cur = next
	}
	return cur
}

// Lookup returns the node at path without creating it.
func (t *Tree) Lookup(path string) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[strings.Trim(path, "/")]
	return n, ok
}
