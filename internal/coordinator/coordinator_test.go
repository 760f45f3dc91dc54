package coordinator

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState int

const (
	fakeNotLoaded fakeState = iota
	fakeBusy
	fakeLoaded
	fakeFailed
)

// fakeResource mirrors the loader contract. With sync set, a fetch completes
// inside Activate; otherwise the test completes it with finish.
type fakeResource struct {
	path      string
	state     fakeState
	sync      bool
	willFail  bool
	fetches   int
	draws     int
	callbacks int
	settle    func()
}

func (r *fakeResource) Path() string   { return r.path }
func (r *fakeResource) IsLoaded() bool { return r.state == fakeLoaded }
func (r *fakeResource) IsBusy() bool   { return r.state == fakeBusy }
func (r *fakeResource) IsFailed() bool { return r.state == fakeFailed }

func (r *fakeResource) Activate(onSettled func()) {
	switch r.state {
	case fakeFailed:
		r.callbacks++
		onSettled()
	case fakeLoaded:
		r.draws++
	case fakeBusy:
	case fakeNotLoaded:
		r.fetches++
		r.state = fakeBusy
		r.settle = func() {
			if r.willFail {
				r.state = fakeFailed
			} else {
				r.state = fakeLoaded
			}
			r.callbacks++
			onSettled()
		}
		if r.sync {
			r.finish()
		}
	}
}

func (r *fakeResource) finish() {
	settle := r.settle
	r.settle = nil
	settle()
}

func slotsOf(resources ...*fakeResource) []Slot {
	slots := make([]Slot, len(resources))
	for i, r := range resources {
		if r == nil {
			slots[i] = Empty()
			continue
		}
		slots[i] = Bound(r)
	}
	return slots
}

func TestSlot(t *testing.T) {
	empty := Empty()
	assert.True(t, empty.IsEmpty())
	_, ok := empty.Resource()
	assert.False(t, ok)

	r := &fakeResource{path: "a.csv"}
	bound := Bound(r)
	assert.False(t, bound.IsEmpty())
	got, ok := bound.Resource()
	require.True(t, ok)
	assert.Same(t, r, got)

	assert.True(t, Bound(nil).IsEmpty())

	var typedNil *fakeResource
	assert.True(t, Bound(typedNil).IsEmpty(), "nil pointer in the interface")

	c := New([]Slot{Bound(typedNil)}, zerolog.Nop())
	require.NotPanics(t, func() { c.SetActiveIndex(0) })
	assert.Equal(t, None, c.LastDrawnIndex())
}

func TestProcess_PrefetchPicksLowestEligible(t *testing.T) {
	loaded := &fakeResource{path: "0.csv", state: fakeLoaded}
	eligible := &fakeResource{path: "1.csv"}
	failed := &fakeResource{path: "2.csv", state: fakeFailed}
	later := &fakeResource{path: "3.csv"}

	c := New(slotsOf(loaded, eligible, failed, later), zerolog.Nop())
	c.Process()

	assert.Equal(t, 1, eligible.fetches)
	assert.Equal(t, 0, later.fetches, "only one item per pass")
	assert.Equal(t, 0, loaded.draws, "nothing active, nothing drawn")
	assert.Equal(t, 0, failed.callbacks)
}

func TestProcess_OneItemPerPassAndBusyNeverReactivated(t *testing.T) {
	a := &fakeResource{path: "a.csv"}
	b := &fakeResource{path: "b.csv"}
	c := New(slotsOf(a, b), zerolog.Nop())

	c.Process()
	c.Process()
	c.Process()

	assert.Equal(t, 1, a.fetches)
	assert.Equal(t, 1, b.fetches, "later passes skip busy a and prefetch b")

	c.Process()
	assert.Equal(t, 1, a.fetches)
	assert.Equal(t, 1, b.fetches)
}

func TestProcess_RedrawBeatsPrefetch(t *testing.T) {
	ready := &fakeResource{path: "ready.csv", state: fakeLoaded}
	unloaded := &fakeResource{path: "unloaded.csv"}
	c := New(slotsOf(unloaded, ready), zerolog.Nop())

	c.SetActiveIndex(1)

	assert.Equal(t, 1, ready.draws)
	assert.Equal(t, 0, unloaded.fetches, "redraw took the pass")
	assert.Equal(t, 1, c.LastDrawnIndex())

	// Next trigger has nothing to redraw, so it prefetches.
	c.Process()
	assert.Equal(t, 1, unloaded.fetches)
	assert.Equal(t, 1, ready.draws)
}

func TestProcess_LastDrawnOnlyMovesWhenAlreadyLoaded(t *testing.T) {
	r := &fakeResource{path: "r.csv"}
	c := New(slotsOf(nil, r), zerolog.Nop())

	c.SetActiveIndex(1)

	assert.Equal(t, 1, r.fetches)
	assert.Equal(t, None, c.LastDrawnIndex(), "loading pass does not count as drawn")
	assert.Equal(t, 0, r.draws)

	// Completion re-triggers processing, which now draws.
	r.finish()

	assert.Equal(t, 1, r.draws)
	assert.Equal(t, 1, c.LastDrawnIndex())
}

func TestProcess_SyncCompletionCoalesces(t *testing.T) {
	r := &fakeResource{path: "r.csv", sync: true}
	c := New(slotsOf(r), zerolog.Nop())

	c.SetActiveIndex(0)

	// Pass one loads synchronously and posts a trigger; pass two draws.
	assert.Equal(t, 1, r.fetches)
	assert.Equal(t, 1, r.draws)
	assert.Equal(t, 0, c.LastDrawnIndex())
	assert.False(t, c.running)
	assert.False(t, c.pending)
}

func TestProcess_SyncPrefetchChainsThroughRegistry(t *testing.T) {
	a := &fakeResource{path: "a.csv", sync: true}
	b := &fakeResource{path: "b.csv", sync: true, willFail: true}
	d := &fakeResource{path: "d.csv", sync: true}
	c := New(slotsOf(a, nil, b, d), zerolog.Nop())

	c.Process()

	assert.True(t, a.IsLoaded())
	assert.True(t, b.IsFailed())
	assert.True(t, d.IsLoaded())
	assert.Equal(t, Progress{Total: 3, Loaded: 2, Failed: 1}, c.Progress())
	assert.True(t, c.Progress().Done())
}

func TestProcess_FailedActiveFallsBackToPrefetch(t *testing.T) {
	// Registry [A valid, B broken], B active.
	a := &fakeResource{path: "a.csv"}
	b := &fakeResource{path: "b.csv", willFail: true}
	c := New(slotsOf(a, b), zerolog.Nop())

	c.SetActiveIndex(1)
	require.True(t, b.IsBusy(), "first pass loads the active section")
	assert.Equal(t, 0, a.fetches)

	b.finish()
	require.True(t, b.IsFailed())
	assert.True(t, a.IsBusy(), "second pass skips failed B and prefetches A")

	a.finish()
	assert.True(t, a.IsLoaded())
	assert.Equal(t, 0, a.draws, "A is not the active section")
	assert.Equal(t, 1, c.ActiveIndex())
	assert.Equal(t, None, c.LastDrawnIndex())

	// Every later pass is a no-op.
	for range 3 {
		c.Process()
	}
	assert.Equal(t, 1, a.fetches)
	assert.Equal(t, 1, b.fetches)
	assert.Equal(t, 0, a.draws)
	assert.Equal(t, 1, b.callbacks)
}

func TestProcess_FailingSyncResourceDoesNotHang(t *testing.T) {
	bad := &fakeResource{path: "bad.csv", sync: true, willFail: true}
	good := &fakeResource{path: "good.csv", sync: true}
	c := New(slotsOf(bad, good), zerolog.Nop())

	assert.NotPanics(t, func() { c.SetActiveIndex(0) })

	assert.True(t, bad.IsFailed())
	assert.True(t, good.IsLoaded(), "scan continues past the failure")
	assert.Equal(t, None, c.LastDrawnIndex())
}

func TestProcess_EmptySectionKeepsCurrentChart(t *testing.T) {
	first := &fakeResource{path: "first.csv", state: fakeLoaded}
	c := New(slotsOf(first, nil, nil), zerolog.Nop())

	c.SetActiveIndex(0)
	require.Equal(t, 0, c.LastDrawnIndex())
	require.Equal(t, 1, first.draws)

	c.SetActiveIndex(2)

	assert.Equal(t, 0, c.ActiveIndex(), "snaps back to the drawn section")
	assert.Equal(t, 0, c.LastDrawnIndex())
	assert.Equal(t, 1, first.draws, "no redraw for an empty section")
	assert.Equal(t, []int{2, 0}, c.Highlighted())
}

func TestProcess_EmptySectionBeforeAnyDraw(t *testing.T) {
	later := &fakeResource{path: "later.csv"}
	c := New(slotsOf(nil, later), zerolog.Nop())

	c.SetActiveIndex(0)

	assert.Equal(t, None, c.ActiveIndex())
	assert.Equal(t, 1, later.fetches, "prefetch still runs")
	assert.Equal(t, []int{0, 1}, c.Highlighted())
}

func TestSetActiveIndex_OutOfRange(t *testing.T) {
	r := &fakeResource{path: "r.csv", state: fakeLoaded}
	c := New(slotsOf(r), zerolog.Nop())

	c.SetActiveIndex(7)
	assert.Equal(t, None, c.ActiveIndex())
	assert.Nil(t, c.Highlighted())
	assert.Equal(t, 0, r.draws)

	c.SetActiveIndex(-3)
	assert.Equal(t, None, c.ActiveIndex())
}

func TestProcess_ActiveAlreadyDrawnIsNotRedrawn(t *testing.T) {
	r := &fakeResource{path: "r.csv", state: fakeLoaded}
	c := New(slotsOf(r), zerolog.Nop())

	c.SetActiveIndex(0)
	c.SetActiveIndex(0)
	c.Process()

	assert.Equal(t, 1, r.draws)
}

func TestHighlighted(t *testing.T) {
	a := &fakeResource{path: "a.csv", state: fakeLoaded}
	c := New(slotsOf(a, nil), zerolog.Nop())

	assert.Nil(t, c.Highlighted())

	c.SetActiveIndex(0)
	assert.Equal(t, []int{0}, c.Highlighted())

	c.SetActiveIndex(1)
	assert.Equal(t, []int{1, 0}, c.Highlighted())
}

func TestHighlighted_LastSectionEmpty(t *testing.T) {
	c := New(slotsOf(&fakeResource{path: "a.csv"}, nil), zerolog.Nop())
	c.SetActiveIndex(1)
	assert.Equal(t, []int{1}, c.Highlighted(), "no following section to borrow")
}

func TestSlotAccessors(t *testing.T) {
	r := &fakeResource{path: "r.csv"}
	c := New(slotsOf(nil, r), zerolog.Nop())

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Slot(0).IsEmpty())
	assert.False(t, c.Slot(1).IsEmpty())
	assert.True(t, c.Slot(5).IsEmpty())
	assert.True(t, c.Slot(-1).IsEmpty())
}

func TestProgress(t *testing.T) {
	c := New(slotsOf(
		&fakeResource{state: fakeLoaded},
		nil,
		&fakeResource{state: fakeBusy},
		&fakeResource{state: fakeFailed},
		&fakeResource{},
	), zerolog.Nop())

	p := c.Progress()
	assert.Equal(t, Progress{Total: 4, Loaded: 1, Busy: 1, Failed: 1, Pending: 1}, p)
	assert.False(t, p.Done())
}
