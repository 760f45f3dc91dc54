package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/rshade/scrollviz/internal/dataset"
)

// Hierarchy column names.
const (
	ColumnID       = "id"
	ColumnParentID = "parent id"
	ColumnValue    = "value"
)

// buildHierarchy stratifies rows by id and parent id. Exactly one row must
// have an empty parent. Each node's value is its own value plus the values of
// its descendants, and children are sorted by descending value.
func buildHierarchy(t *dataset.Table) (Figure, error) {
	if !hasColumn(t, ColumnID) || !hasColumn(t, ColumnParentID) {
		return Figure{}, fmt.Errorf("%w: hierarchy needs %q and %q columns",
			ErrNothingToDraw, ColumnID, ColumnParentID)
	}

	nodes := make(map[string]*Node, t.Len())
	parents := make(map[string]string, t.Len())
	order := make([]string, 0, t.Len())
	for i := range t.Rows {
		id := t.Cell(i, ColumnID).String()
		if _, dup := nodes[id]; dup {
			return Figure{}, fmt.Errorf("%w: duplicate id %q", ErrNothingToDraw, id)
		}
		own, _ := finite(t.Cell(i, ColumnValue))
		nodes[id] = &Node{ID: id, Value: own}
		parents[id] = t.Cell(i, ColumnParentID).String()
		order = append(order, id)
	}

	var root *Node
	for _, id := range order {
		parentID := parents[id]
		if parentID == "" {
			if root != nil {
				return Figure{}, fmt.Errorf("%w: multiple roots", ErrNothingToDraw)
			}
			root = nodes[id]
			continue
		}
		parent, ok := nodes[parentID]
		if !ok {
			return Figure{}, fmt.Errorf("%w: missing parent %q", ErrNothingToDraw, parentID)
		}
		parent.Children = append(parent.Children, nodes[id])
	}
	if root == nil {
		return Figure{}, fmt.Errorf("%w: no root", ErrNothingToDraw)
	}

	reached := 0
	root.Walk(func(*Node) { reached++ })
	if reached != len(nodes) {
		return Figure{}, fmt.Errorf("%w: cycle in hierarchy", ErrNothingToDraw)
	}

	if total := sumAndSort(root, 0); math.IsInf(total, 0) {
		return Figure{}, fmt.Errorf("%w: values overflow", ErrNothingToDraw)
	}
	return Figure{Kind: KindHierarchy, Root: root}, nil
}

func sumAndSort(n *Node, depth int) float64 {
	n.Depth = depth
	for _, child := range n.Children {
		n.Value += sumAndSort(child, depth+1)
	}
	sort.SliceStable(n.Children, func(i, j int) bool {
		return n.Children[i].Value > n.Children[j].Value
	})
	return n.Value
}

func hasColumn(t *dataset.Table, name string) bool {
	for _, column := range t.Columns {
		if column == name {
			return true
		}
	}
	return false
}
