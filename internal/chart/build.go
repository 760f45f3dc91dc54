package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/rshade/scrollviz/internal/dataset"
)

// Builder turns a table into a figure. Builders never panic on odd input; they
// return ErrNothingToDraw instead.
type Builder func(*dataset.Table) (Figure, error)

// builders maps each kind to its builder.
//
//nolint:gochecknoglobals // Static lookup table.
var builders = map[Kind]Builder{
	KindBar:       itemsOf(KindBar),
	KindPie:       itemsOf(KindPie),
	KindDonut:     itemsOf(KindDonut),
	KindHierarchy: buildHierarchy,
	KindGrouped:   buildGrouped,
	KindStacked:   buildStacked,
	KindDonuts:    buildDonuts,
	KindGauge:     buildGauge,
}

// Build renders t as a figure of the given kind.
func Build(kind Kind, t *dataset.Table) (Figure, error) {
	build, ok := builders[kind]
	if !ok {
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if t.Len() == 0 {
		return Figure{}, ErrNothingToDraw
	}
	return build(t)
}

func itemsOf(kind Kind) Builder {
	return func(t *dataset.Table) (Figure, error) {
		items := NameValues(t)
		if len(items) == 0 {
			return Figure{}, ErrNothingToDraw
		}
		return Figure{Kind: kind, Items: items}, nil
	}
}

// NameValues converts a table into name/value pairs.
//
// A single-row table contributes one pair per numeric column, named after the
// column. A two-column table contributes one pair per row: the value column is
// whichever column is numeric in the first row, the other column is the name.
// Rows whose value cell is not a finite number are skipped. Any other shape
// yields no pairs.
func NameValues(t *dataset.Table) []Item {
	if t.Len() == 0 {
		return nil
	}

	var items []Item
	if t.Len() == 1 {
		for _, column := range t.Columns {
			if v, ok := finite(t.Cell(0, column)); ok {
				items = append(items, Item{Name: column, Value: v})
			}
		}
		return items
	}

	if len(t.Columns) != 2 {
		return nil
	}

	valueColumn := -1
	for i := range 2 {
		if t.Cell(0, t.Column(i)).IsNumber() {
			valueColumn = i
			break
		}
	}
	if valueColumn < 0 {
		return nil
	}
	nameColumn := t.Column(1 - valueColumn)
	valueName := t.Column(valueColumn)

	for i := range t.Rows {
		v, ok := finite(t.Cell(i, valueName))
		if !ok {
			continue
		}
		items = append(items, Item{Name: t.Cell(i, nameColumn).String(), Value: v})
	}
	return items
}

// buildGrouped reads (category, series, value) rows into one group per
// category, keeping first-seen order for both categories and series.
func buildGrouped(t *dataset.Table) (Figure, error) {
	groups, err := groupRows(t)
	if err != nil {
		return Figure{}, err
	}
	return Figure{Kind: KindGrouped, Groups: groups}, nil
}

// buildDonuts reads (key, label, value) rows into one donut per key.
func buildDonuts(t *dataset.Table) (Figure, error) {
	groups, err := groupRows(t)
	if err != nil {
		return Figure{}, err
	}
	return Figure{Kind: KindDonuts, Groups: groups}, nil
}

// buildStacked reads (category..., series, value) rows into one bar per
// distinct category, where the category is every column before the last two
// joined with " / ". Each bar is normalized so its positive values sum to 1.
// Bars with nothing positive are dropped.
func buildStacked(t *dataset.Table) (Figure, error) {
	n := len(t.Columns)
	if n < 3 {
		return Figure{}, ErrNothingToDraw
	}
	seriesColumn, valueColumn := t.Column(n-2), t.Column(n-1)

	index := make(map[string]int)
	var bars []Group
	for i := range t.Rows {
		v, ok := finite(t.Cell(i, valueColumn))
		if !ok || v <= 0 {
			continue
		}
		parts := make([]string, 0, n-2)
		for _, column := range t.Columns[:n-2] {
			parts = append(parts, t.Cell(i, column).String())
		}
		key := strings.Join(parts, " / ")

		pos, seen := index[key]
		if !seen {
			pos = len(bars)
			index[key] = pos
			bars = append(bars, Group{Name: key})
		}
		bars[pos].Items = append(bars[pos].Items, Item{
			Name:  t.Cell(i, seriesColumn).String(),
			Value: v,
		})
	}

	groups := make([]Group, 0, len(bars))
	for _, bar := range bars {
		total := sumItems(bar.Items)
		if total <= 0 || math.IsInf(total, 0) {
			continue
		}
		for j := range bar.Items {
			bar.Items[j].Value /= total
		}
		groups = append(groups, bar)
	}
	if len(groups) == 0 {
		return Figure{}, ErrNothingToDraw
	}
	return Figure{Kind: KindStacked, Groups: groups}, nil
}

func groupRows(t *dataset.Table) ([]Group, error) {
	if len(t.Columns) < 3 {
		return nil, ErrNothingToDraw
	}
	keyColumn, labelColumn, valueColumn := t.Column(0), t.Column(1), t.Column(2)

	index := make(map[string]int)
	var groups []Group
	for i := range t.Rows {
		v, ok := finite(t.Cell(i, valueColumn))
		if !ok {
			continue
		}
		key := t.Cell(i, keyColumn).String()
		pos, seen := index[key]
		if !seen {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, Group{Name: key})
		}
		groups[pos].Items = append(groups[pos].Items, Item{
			Name:  t.Cell(i, labelColumn).String(),
			Value: v,
		})
	}
	if len(groups) == 0 {
		return nil, ErrNothingToDraw
	}
	return groups, nil
}

// buildGauge uses the first numeric cell, row by row. Values above 1 are read
// as percentages. The result is clamped to [0, 1].
func buildGauge(t *dataset.Table) (Figure, error) {
	for i := range t.Rows {
		for _, column := range t.Columns {
			v, ok := finite(t.Cell(i, column))
			if !ok {
				continue
			}
			if v > 1 {
				v /= 100
			}
			return Figure{Kind: KindGauge, Fraction: min(max(v, 0), 1)}, nil
		}
	}
	return Figure{}, ErrNothingToDraw
}

// finite returns the cell's number when it is numeric and neither infinite
// nor NaN.
func finite(v dataset.Value) (float64, bool) {
	f, ok := v.Float()
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
