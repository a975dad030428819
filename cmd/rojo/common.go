package main

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// instantiateSnapshot materializes a standalone snapshot into a fresh tree,
// for commands that need to walk an assembled instance tree without
// running a live session.
func instantiateSnapshot(snap *snapshot.Instance) (*rbxtree.Tree, rbxtree.ID, error) {
	tree := rbxtree.New()
	id, err := tree.Insert(tree.RootID(), snap)
	if err != nil {
		return nil, rbxtree.ID{}, err
	}
	return tree, id, nil
}
