// Package scroll maps a scrolled window over the narrative onto the index of
// the step the reader is looking at.
package scroll

// Extent is the half-open line range [Start, End) a step occupies in the
// rendered narrative.
type Extent struct {
	Start int
	End   int
}

// Lines returns the extent height.
func (e Extent) Lines() int {
	return max(e.End-e.Start, 0)
}

// Layout holds the extents of every step, in order.
type Layout []Extent

// Stack builds a layout from per-step heights with gap blank lines between
// consecutive steps.
func Stack(heights []int, gap int) Layout {
	layout := make(Layout, len(heights))
	line := 0
	for i, h := range heights {
		if i > 0 {
			line += gap
		}
		layout[i] = Extent{Start: line, End: line + max(h, 0)}
		line += max(h, 0)
	}
	return layout
}

// Height returns the total number of lines covered by the layout.
func (l Layout) Height() int {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1].End
}

// MostVisible returns the index of the step with the most lines inside the
// window [offset, offset+height). Ties go to the earlier step. It returns -1
// when no step is visible.
func MostVisible(layout Layout, offset, height int) int {
	best, bestLines := -1, 0
	windowEnd := offset + height
	for i, e := range layout {
		if e.Start >= windowEnd {
			break
		}
		visible := min(e.End, windowEnd) - max(e.Start, offset)
		if visible > bestLines {
			best, bestLines = i, visible
		}
	}
	return best
}

// Tracker reports the most visible step only when it changes.
type Tracker struct {
	last int
}

// NewTracker returns a tracker that has not emitted yet.
func NewTracker() *Tracker {
	return &Tracker{last: -1}
}

// Observe computes the most visible step and reports whether it differs from
// the last one emitted. A window showing no step never emits.
func (t *Tracker) Observe(layout Layout, offset, height int) (int, bool) {
	index := MostVisible(layout, offset, height)
	if index < 0 || index == t.last {
		return t.last, false
	}
	t.last = index
	return index, true
}

// Reset forgets the last emitted step, so the next Observe always emits.
func (t *Tracker) Reset() {
	t.last = -1
}

// Current returns the last emitted step, or -1.
func (t *Tracker) Current() int {
	return t.last
}
