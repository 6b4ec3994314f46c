package eon

import (
	"iter"
	"strconv"
)

// Selection is the result of resolving a path against a tree: nothing, one
// node, or an ordered run of nodes when the path contains a wildcard. It
// references nodes of the source tree and never owns them.
type Selection struct {
	path  Path
	nodes []*Node
	at    []Path // concrete path of each node
	multi bool
}

// Select parses path and resolves it against root. The only error is
// invalid_identifier for a malformed path; a path that leads nowhere is an
// empty Selection.
func Select(root *Node, path string) (Selection, error) {
	p, err := ParsePath(path)
	if err != nil {
		return Selection{}, err
	}
	return SelectPath(root, p), nil
}

// SelectPath resolves an already parsed path against root.
func SelectPath(root *Node, p Path) Selection {
	if root == nil {
		return Selection{path: p}
	}
	cur := []*Node{root}
	at := []Path{Root}
	multi := false
	for _, st := range p.steps {
		next := make([]*Node, 0, len(cur))
		nextAt := make([]Path, 0, len(cur))
		for i, n := range cur {
			switch st.kind {
			case stepKey:
				if v, ok := n.Get(st.key); ok {
					next = append(next, v)
					nextAt = append(nextAt, at[i].with(st))
				}
			case stepIndex:
				if v, ok := n.At(st.index); ok {
					next = append(next, v)
					nextAt = append(nextAt, at[i].with(st))
				}
			case stepWildcard:
				switch n.Kind() {
				case KindArray, KindSet:
					for j, v := range n.Items() {
						next = append(next, v)
						nextAt = append(nextAt, at[i].Index(j))
					}
				case KindMap:
					for k, v := range n.Entries() {
						next = append(next, v)
						nextAt = append(nextAt, at[i].Key(k))
					}
				}
			}
		}
		if st.kind == stepWildcard {
			multi = true
		}
		cur, at = next, nextAt
		if len(cur) == 0 {
			break
		}
	}
	return Selection{path: p, nodes: cur, at: at, multi: multi}
}

// Path returns the path the selection was resolved from.
func (s Selection) Path() Path { return s.path }

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool { return len(s.nodes) == 0 }

// Len returns the number of selected nodes.
func (s Selection) Len() int { return len(s.nodes) }

// IsMulti reports whether the path contained a wildcard. A multi selection is
// a sequence even when it holds exactly one node.
func (s Selection) IsMulti() bool { return s.multi }

// Node returns the single selected node. An empty selection is
// selection_empty; a multi selection is invalid_value.
func (s Selection) Node() (*Node, error) {
	if s.Empty() {
		return nil, newError(CodeSelectionEmpty, s.path, "", nil)
	}
	if s.multi {
		return nil, mismatchError(s.path, "single node", strconv.Itoa(len(s.nodes))+" nodes")
	}
	return s.nodes[0], nil
}

// Nodes iterates the selected nodes in tree order, keyed by their concrete
// paths (wildcards replaced by the index or key they matched).
func (s Selection) Nodes() iter.Seq2[Path, *Node] {
	return func(yield func(Path, *Node) bool) {
		for i, n := range s.nodes {
			if !yield(s.at[i], n) {
				return
			}
		}
	}
}

// asNode returns the selection as one node: the single node, or an array
// sharing the selected nodes for a multi selection.
func (s Selection) asNode() *Node {
	if s.multi {
		return Array(s.nodes...)
	}
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[0]
}
