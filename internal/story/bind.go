package story

import (
	"github.com/rs/zerolog"

	"github.com/rshade/scrollviz/internal/chart"
	"github.com/rshade/scrollviz/internal/coordinator"
	"github.com/rshade/scrollviz/internal/loader"
)

var _ coordinator.Resource = (*loader.Loader)(nil)

// Bind builds the section registry: an empty slot for every step without a
// chart and a loader for every step with one. Each loader renders onto
// surface. opts are applied to every loader.
func (s *Storyboard) Bind(surface *chart.Surface, logger zerolog.Logger, opts ...loader.Option) []coordinator.Slot {
	slots := make([]coordinator.Slot, len(s.Steps))
	for i, step := range s.Steps {
		if !step.HasChart() {
			slots[i] = coordinator.Empty()
			continue
		}

		// Validate already rejected unknown kinds.
		kind, _ := chart.ParseKind(step.Chart.Kind)
		stepLogger := logger.With().Int("step", i).Str("kind", string(kind)).Logger()

		render := chart.Renderer(kind, step.Chart.Title, surface, stepLogger)
		loaderOpts := append([]loader.Option{loader.WithLogger(stepLogger)}, opts...)
		slots[i] = coordinator.Bound(loader.New(step.Chart.Data, render, loaderOpts...))
	}
	return slots
}

// Loaders returns the loaders bound in slots, keyed by step index.
func Loaders(slots []coordinator.Slot) map[int]*loader.Loader {
	out := make(map[int]*loader.Loader)
	for i, slot := range slots {
		res, ok := slot.Resource()
		if !ok {
			continue
		}
		if l, isLoader := res.(*loader.Loader); isLoader {
			out[i] = l
		}
	}
	return out
}

// Fetcher returns the default fetcher for s: local paths resolve against the
// storyboard directory, http(s) URLs are downloaded.
func (s *Storyboard) Fetcher(httpFetcher loader.HTTPFetcher) loader.SourceFetcher {
	return loader.SourceFetcher{
		File: loader.FileFetcher{Root: s.Dir},
		HTTP: httpFetcher,
	}
}
