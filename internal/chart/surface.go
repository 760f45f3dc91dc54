package chart

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/rshade/scrollviz/internal/dataset"
)

// Palette is the colour range shared by every chart, light to dark.
//
//nolint:gochecknoglobals // Fixed brand palette.
var Palette = []string{"#00e0ff", "#0f57e2", "#0000ff", "#000086"}

// DepthPalette colours packed circles by depth, outermost first.
//
//nolint:gochecknoglobals // Fixed brand palette.
var DepthPalette = []string{"#000086", "#0f57e2", "#00e0ff"}

// Color returns the palette colour for index i, cycling.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// DepthColor returns the colour for a hierarchy depth, clamping deep levels.
func DepthColor(depth int) string {
	if depth < 0 {
		depth = 0
	}
	if depth >= len(DepthPalette) {
		depth = len(DepthPalette) - 1
	}
	return DepthPalette[depth]
}

// Surface is the single drawing surface all renderers share. Each render
// clears it first, so at most one figure is ever on it. Surface is confined
// to the goroutine that drives the loaders.
type Surface struct {
	figure     *Figure
	generation uint64
}

// Clear removes the current figure.
func (s *Surface) Clear() {
	s.figure = nil
	s.generation++
}

// Draw puts f on the surface.
func (s *Surface) Draw(f Figure) {
	s.figure = &f
	s.generation++
}

// Figure returns the figure on the surface, if any.
func (s *Surface) Figure() (Figure, bool) {
	if s.figure == nil {
		return Figure{}, false
	}
	return *s.figure, true
}

// Generation increases on every Clear and Draw. Viewers compare it to detect
// a render.
func (s *Surface) Generation() uint64 {
	return s.generation
}

// Renderer returns a render function that clears s and draws t as kind. Data
// that cannot be charted leaves s cleared.
func Renderer(kind Kind, title string, s *Surface, logger zerolog.Logger) func(*dataset.Table) {
	return func(t *dataset.Table) {
		s.Clear()
		fig, err := Build(kind, t)
		if err != nil {
			event := logger.Warn()
			if errors.Is(err, ErrNothingToDraw) {
				event = logger.Info()
			}
			event.Err(err).Str("kind", string(kind)).Msg("chart not drawn")
			return
		}
		fig.Title = title
		s.Draw(fig)
	}
}
