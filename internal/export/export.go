// Package export renders every chart of a storyboard to PNG files by walking
// the sections in order, the way a reader scrolling top to bottom would.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/rshade/scrollviz/internal/chart"
	"github.com/rshade/scrollviz/internal/coordinator"
	"github.com/rshade/scrollviz/internal/loader"
	"github.com/rshade/scrollviz/internal/story"
)

// ErrNotDrawn is reported for a chart step whose data loaded but produced no
// figure.
var ErrNotDrawn = errors.New("chart was not drawn")

// Result describes the outcome for one chart step.
type Result struct {
	Step  int
	Label string
	// Path is the written file, empty when nothing was written.
	Path string
	// Skipped is set when the data held nothing to draw.
	Skipped bool
	Err     error
}

// Exporter writes storyboard charts to a directory.
type Exporter struct {
	dir     string
	painter *Painter
	fetcher loader.Fetcher
	logger  zerolog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFetcher overrides the fetcher used for data files. By default local
// files resolve against the storyboard directory and URLs use HTTP.
func WithFetcher(f loader.Fetcher) Option {
	return func(e *Exporter) {
		e.fetcher = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// New creates an Exporter writing into dir.
func New(dir string, painter *Painter, opts ...Option) *Exporter {
	e := &Exporter{
		dir:     dir,
		painter: painter,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName returns the PNG name for step i.
func FileName(i int) string {
	return fmt.Sprintf("step-%02d.png", i+1)
}

// Export activates each chart step in order and writes what it draws. Loads
// run inline, so every activation has settled by the time it returns. Failed
// steps do not stop the export; their errors are combined in the returned
// error.
func (e *Exporter) Export(ctx context.Context, sb *story.Storyboard) ([]Result, error) {
	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	fetcher := e.fetcher
	if fetcher == nil {
		fetcher = sb.Fetcher(loader.HTTPFetcher{})
	}

	surface := &chart.Surface{}
	slots := sb.Bind(surface, e.logger,
		loader.WithFetcher(fetcher),
		loader.WithContext(ctx),
		loader.WithScheduler(loader.Inline{}),
	)
	loaders := story.Loaders(slots)
	coord := coordinator.New(slots, e.logger)

	var (
		results []Result
		errs    error
	)
	for i, step := range sb.Steps {
		if !step.HasChart() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}

		res := e.exportStep(coord, surface, loaders[i], i, sb.Label(i), step)
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("step %d (%s): %w", i+1, res.Label, res.Err))
		}
		results = append(results, res)
	}
	return results, errs
}

func (e *Exporter) exportStep(
	coord *coordinator.Coordinator,
	surface *chart.Surface,
	l *loader.Loader,
	i int,
	label string,
	step story.Step,
) Result {
	res := Result{Step: i, Label: label}
	before := surface.Generation()

	coord.SetActiveIndex(i)

	if l.IsFailed() {
		res.Err = l.Err()
		return res
	}

	fig, ok := surface.Figure()
	if surface.Generation() == before || !ok {
		// Rebuild to learn why the renderer left the surface empty.
		kind, _ := chart.ParseKind(step.Chart.Kind)
		_, err := chart.Build(kind, l.Table())
		switch {
		case errors.Is(err, chart.ErrNothingToDraw):
			res.Skipped = true
		case err != nil:
			res.Err = err
		default:
			res.Err = ErrNotDrawn
		}
		return res
	}

	path := filepath.Join(e.dir, FileName(i))
	if err := e.painter.SavePNG(path, fig); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", path, err)
		return res
	}
	res.Path = path
	e.logger.Info().Int("step", i).Str("file", path).Msg("chart exported")
	return res
}
