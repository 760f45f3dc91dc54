// Package loader wraps the one-time fetch of a chart's data file and tracks
// its progress through NotLoaded, Loading, Loaded and Failed.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/scrollviz/internal/dataset"
)

// ErrFetch is the only failure kind a Loader records: its data file could not
// be read or parsed.
var ErrFetch = errors.New("fetch failed")

// errNoTable is reported when a fetcher returns neither a table nor an error.
var errNoTable = errors.New("fetcher returned no table")

// State is the load progress of a single resource.
type State int

const (
	// NotLoaded means no fetch has been issued yet.
	NotLoaded State = iota
	// Loading means a fetch is in flight.
	Loading
	// Loaded means the table is cached. Terminal.
	Loaded
	// Failed means the fetch errored. Terminal, never retried.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RenderFunc draws a loaded table. It runs on the caller's goroutine, inside
// Activate.
type RenderFunc func(*dataset.Table)

// Loader owns one resource: its path, its cached table and its render
// function. A Loader is not safe for concurrent use; it is driven from a
// single goroutine and relies on its Scheduler to bring fetch completions
// back onto that goroutine.
type Loader struct {
	path   string
	render RenderFunc

	ctx       context.Context
	fetcher   Fetcher
	scheduler Scheduler
	logger    zerolog.Logger

	state State
	table *dataset.Table
	err   error
}

// Option configures a Loader.
type Option func(*Loader)

// WithFetcher sets the fetcher used to read the data file.
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) {
		l.fetcher = f
	}
}

// WithScheduler sets how the blocking fetch is run. Defaults to Inline.
func WithScheduler(s Scheduler) Option {
	return func(l *Loader) {
		l.scheduler = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithContext sets the context handed to the fetcher.
func WithContext(ctx context.Context) Option {
	return func(l *Loader) {
		l.ctx = ctx
	}
}

// New creates a Loader for path. render is called with the cached table each
// time the loader is activated after a successful load.
//
// Example:
//
//	l := loader.New("Data/Viz2.csv", draw,
//	    loader.WithFetcher(loader.FileFetcher{Root: dir}),
//	    loader.WithScheduler(loop),
//	)
func New(path string, render RenderFunc, opts ...Option) *Loader {
	l := &Loader{
		path:      path,
		render:    render,
		ctx:       context.Background(),
		fetcher:   FileFetcher{},
		scheduler: Inline{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("path", path).Logger()
	return l
}

// Path returns the data file path.
func (l *Loader) Path() string { return l.path }

// State returns the current load state.
func (l *Loader) State() State { return l.state }

// IsLoaded reports whether the table is cached.
func (l *Loader) IsLoaded() bool { return l.state == Loaded }

// IsBusy reports whether a fetch is in flight.
func (l *Loader) IsBusy() bool { return l.state == Loading }

// IsFailed reports whether the fetch failed.
func (l *Loader) IsFailed() bool { return l.state == Failed }

// Err returns the failure recorded by a Failed loader, or nil.
func (l *Loader) Err() error { return l.err }

// Table returns the cached table, or nil before a successful load.
func (l *Loader) Table() *dataset.Table { return l.table }

// Activate triggers the work appropriate to the current state:
//
//   - Failed: onSettled is invoked immediately.
//   - Loaded: the render function is called with the cached table. onSettled
//     is NOT invoked on this path.
//   - NotLoaded: the fetch is scheduled. When it completes the loader becomes
//     Loaded or Failed and onSettled is invoked. The render function is not
//     called here; the next activation draws.
//   - Loading: nothing happens. The in-flight completion is the only way out.
func (l *Loader) Activate(onSettled func()) {
	l.logger.Debug().Stringer("state", l.state).Msg("activating")

	switch l.state {
	case Failed:
		onSettled()
	case Loaded:
		if l.render != nil {
			l.render(l.table)
		}
	case Loading:
		l.logger.Debug().Msg("fetch already in flight")
	case NotLoaded:
		l.state = Loading
		ctx, fetcher, path := l.ctx, l.fetcher, l.path
		l.scheduler.Schedule(
			func() (*dataset.Table, error) {
				return fetcher.Fetch(ctx, path)
			},
			func(table *dataset.Table, err error) {
				l.settle(table, err)
				onSettled()
			},
		)
	}
}

// settle records the fetch outcome. It runs on the loader's goroutine.
func (l *Loader) settle(table *dataset.Table, err error) {
	if err == nil && table == nil {
		err = errNoTable
	}
	if err != nil {
		l.state = Failed
		l.err = fmt.Errorf("%w: %s: %w", ErrFetch, l.path, err)
		l.logger.Warn().Err(err).Msg("failed to read data file")
		return
	}

	l.table = dataset.CoerceTable(table)
	l.state = Loaded
	l.logger.Debug().
		Int("rows", l.table.Len()).
		Int("columns", len(l.table.Columns)).
		Msg("data file loaded")
}
