package rbxtree

import (
	"fmt"
	"io"
)

const graphvizHeader = `digraph RojoTree {
    rankdir = "LR";
    graph [
        ranksep = "0.7",
        nodesep = "0.5",
    ];
    node [
        fontname = "Hack",
        shape = "record",
    ];
`

// Visualize writes a Graphviz dot representation of the tree to w, a debug
// dump giving a human-readable tree snapshot.
func (t *Tree) Visualize(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, err := io.WriteString(w, graphvizHeader); err != nil {
		return err
	}
	if err := t.visualizeNode(w, t.rootID); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// visualizeNode writes one instance and its children. The caller must
// hold t.mu.
func (t *Tree) visualizeNode(w io.Writer, id ID) error {
	inst, ok := t.instances[id]
	if !ok {
		return nil
	}
	if _, err := fmt.Fprintf(w, "    %q [label=%q]\n", id, inst.Name); err != nil {
		return err
	}
	for _, childID := range inst.Children {
		if _, err := fmt.Fprintf(w, "    %q -> %q\n", id, childID); err != nil {
			return err
		}
		if err := t.visualizeNode(w, childID); err != nil {
			return err
		}
	}
	return nil
}
