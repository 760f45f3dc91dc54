// Package chart turns loaded tables into device-independent figures and
// keeps the single shared drawing surface that every renderer writes to.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Common chart errors.
var (
	ErrUnknownKind   = errors.New("unknown chart kind")
	ErrNothingToDraw = errors.New("nothing to draw")
)

// Kind names a chart type.
type Kind string

// Supported chart kinds.
const (
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindDonut     Kind = "donut"
	KindHierarchy Kind = "hierarchy"
	KindGrouped   Kind = "grouped"
	KindDonuts    Kind = "donuts"
	KindGauge     Kind = "gauge"
	KindStacked   Kind = "stacked"
)

// Kinds lists every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindBar, KindPie, KindDonut, KindHierarchy, KindGrouped, KindStacked, KindDonuts, KindGauge}
}

// ParseKind validates a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Item is a named value: a bar, a wedge or a series member.
type Item struct {
	Name  string
	Value float64
}

// Group is a named set of items: a category of grouped bars, one stacked bar,
// or one donut.
type Group struct {
	Name  string
	Items []Item
}

// Node is one circle of a packed hierarchy. Value includes all descendants.
type Node struct {
	ID       string
	Value    float64
	Depth    int
	Children []*Node
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Figure is what a renderer produces. Which fields are set depends on Kind:
// Items for bar, pie and donut; Groups for grouped, stacked and donuts; Root
// for hierarchy; Fraction for gauge. Stacked item values are shares of their
// bar and sum to 1.
type Figure struct {
	Kind     Kind
	Title    string
	Items    []Item
	Groups   []Group
	Root     *Node
	Fraction float64
}

// Total sums Items.
func (f Figure) Total() float64 {
	return sumItems(f.Items)
}

// MaxValue returns the largest item value across Items and Groups.
func (f Figure) MaxValue() float64 {
	maxValue := 0.0
	for _, item := range f.Items {
		maxValue = max(maxValue, item.Value)
	}
	for _, g := range f.Groups {
		for _, item := range g.Items {
			maxValue = max(maxValue, item.Value)
		}
	}
	return maxValue
}

// Series returns the distinct item names across Groups in first-seen order.
func (f Figure) Series() []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range f.Groups {
		for _, item := range g.Items {
			if !seen[item.Name] {
				seen[item.Name] = true
				names = append(names, item.Name)
			}
		}
	}
	return names
}

func sumItems(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Value
	}
	return total
}
