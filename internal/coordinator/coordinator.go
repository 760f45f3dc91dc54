// Package coordinator serializes chart loading and drawing over an ordered
// registry of sections. At most one unit of work (a redraw of the active
// section, or a prefetch of the next unloaded resource) is started per pass.
package coordinator

import (
	"github.com/rs/zerolog"
)

// None marks an unset section index.
const None = -1

// Progress summarizes resource states across the registry.
type Progress struct {
	Total   int
	Loaded  int
	Busy    int
	Failed  int
	Pending int
}

// Done reports whether every resource reached a terminal state.
func (p Progress) Done() bool {
	return p.Busy == 0 && p.Pending == 0
}

// Coordinator decides, on every trigger, whether to redraw the active section
// or prefetch the next unloaded resource. It is not safe for concurrent use:
// every call, including resource completion callbacks, must happen on one
// goroutine.
type Coordinator struct {
	slots  []Slot
	logger zerolog.Logger

	// active is the section to show. requested is what the scroll source
	// last asked for; active may snap back from it when that section is empty.
	active    int
	requested int
	lastDrawn int

	running bool
	pending bool
}

// New creates a Coordinator over slots. The slice is copied; slots never
// change afterwards.
func New(slots []Slot, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		slots:     append([]Slot(nil), slots...),
		logger:    logger,
		active:    None,
		requested: None,
		lastDrawn: None,
	}
}

// Len returns the number of sections.
func (c *Coordinator) Len() int { return len(c.slots) }

// Slot returns the i-th slot, or an empty slot when out of range.
func (c *Coordinator) Slot(i int) Slot {
	if i < 0 || i >= len(c.slots) {
		return Empty()
	}
	return c.slots[i]
}

// ActiveIndex returns the section the coordinator is trying to show.
func (c *Coordinator) ActiveIndex() int { return c.active }

// LastDrawnIndex returns the section whose chart was drawn last.
func (c *Coordinator) LastDrawnIndex() int { return c.lastDrawn }

// SetActiveIndex records the section currently in view and processes.
// Indices outside the registry clear the active section.
func (c *Coordinator) SetActiveIndex(i int) {
	if i < 0 || i >= len(c.slots) {
		if i != None {
			c.logger.Warn().Int("index", i).Int("sections", len(c.slots)).
				Msg("active index out of range, clearing")
		}
		i = None
	}
	c.logger.Debug().Int("index", i).Msg("section activated")
	c.active = i
	c.requested = i
	c.Process()
}

// Process runs one decision pass. A trigger that arrives while a pass is
// running (a resource completing synchronously inside Activate) is coalesced
// into a single follow-up pass instead of re-entering.
func (c *Coordinator) Process() {
	if c.running {
		c.pending = true
		return
	}

	c.running = true
	defer func() { c.running = false }()

	for {
		c.pending = false
		c.pass()
		if !c.pending {
			return
		}
	}
}

// pass selects at most one resource and activates it.
func (c *Coordinator) pass() {
	var item Resource
	index := None
	willDraw := false

	if c.active != None && c.active != c.lastDrawn {
		res, ok := c.slots[c.active].Resource()
		switch {
		case !ok:
			// Empty sections are transparent: keep showing the last chart.
			c.logger.Debug().Int("index", c.active).Int("last_drawn", c.lastDrawn).
				Msg("section has no chart, keeping current chart")
			c.active = c.lastDrawn
		case res.IsFailed():
			c.logger.Debug().Int("index", c.active).Str("path", res.Path()).
				Msg("skipping failed section")
		case !res.IsBusy():
			item, index = res, c.active
			willDraw = res.IsLoaded()
		}
	}

	if item == nil {
		item, index = c.nextUnloaded()
	}

	if item == nil {
		return
	}

	c.logger.Debug().
		Int("index", index).
		Str("path", item.Path()).
		Bool("draw", willDraw).
		Msg("activating section")

	item.Activate(c.Process)

	if willDraw {
		c.lastDrawn = c.active
	}
}

// nextUnloaded returns the lowest-index resource that has not started loading.
func (c *Coordinator) nextUnloaded() (Resource, int) {
	for i, slot := range c.slots {
		res, ok := slot.Resource()
		if !ok {
			continue
		}
		if !res.IsLoaded() && !res.IsBusy() && !res.IsFailed() {
			return res, i
		}
	}
	return nil, None
}

// Highlighted returns the sections a scroll source should emphasize: the
// requested section and, when it has no chart, the section whose chart stays
// on screen (or the following section if nothing was drawn yet).
func (c *Coordinator) Highlighted() []int {
	if c.requested == None {
		return nil
	}
	if !c.slots[c.requested].IsEmpty() {
		return []int{c.requested}
	}

	other := c.lastDrawn
	if other == None {
		other = c.requested + 1
	}
	if other == c.requested || other >= len(c.slots) {
		return []int{c.requested}
	}
	return []int{c.requested, other}
}

// Progress counts resources by state.
func (c *Coordinator) Progress() Progress {
	var p Progress
	for _, slot := range c.slots {
		res, ok := slot.Resource()
		if !ok {
			continue
		}
		p.Total++
		switch {
		case res.IsLoaded():
			p.Loaded++
		case res.IsFailed():
			p.Failed++
		case res.IsBusy():
			p.Busy++
		default:
			p.Pending++
		}
	}
	return p
}
