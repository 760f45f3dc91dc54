package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/scrollviz/internal/chart"
	"github.com/rshade/scrollviz/internal/coordinator"
	"github.com/rshade/scrollviz/internal/loader"
	"github.com/rshade/scrollviz/internal/runloop"
	"github.com/rshade/scrollviz/internal/story"
	"github.com/rshade/scrollviz/internal/tui"
)

// NewPlayCmd creates the play command.
func NewPlayCmd() *cobra.Command {
	var (
		steps []int
		width int
	)

	cmd := &cobra.Command{
		Use:   "play <storyboard>",
		Short: "Replay a scroll sequence and print what each step shows",
		Long: `Activates the given steps in order, as if the reader scrolled to each one,
and prints the chart on screen after every activation. Data files load in the
background exactly as in the interactive reader.`,
		Example: `  # Walk every step top to bottom
  scrollviz play storyboard.yaml

  # Jump around
  scrollviz play storyboard.yaml --steps 3,1,4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0], steps, width)
		},
	}

	cmd.Flags().IntSliceVar(&steps, "steps", nil, "1-based steps to scroll to, in order (default: every step)")
	cmd.Flags().IntVar(&width, "width", 0, "chart width in columns (default: view.chart_width)")

	return cmd
}

func runPlay(cmd *cobra.Command, path string, steps []int, width int) error {
	ctx := cmd.Context()
	sb, cfg, err := loadStory(cmd, path)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = cfg.View.ChartWidth
	}

	if len(steps) == 0 {
		for i := range sb.Steps {
			steps = append(steps, i+1)
		}
	}
	for _, n := range steps {
		if n < 1 || n > len(sb.Steps) {
			return fmt.Errorf("step %d out of range 1-%d", n, len(sb.Steps))
		}
	}

	loop := runloop.New()
	surface := &chart.Surface{}
	slots := sb.Bind(surface, logger,
		loader.WithScheduler(loop),
		loader.WithFetcher(fetcherFor(sb, cfg)),
		loader.WithContext(ctx),
	)
	loaders := story.Loaders(slots)
	coord := coordinator.New(slots, logger)

	out := cmd.OutOrStdout()
	for _, n := range steps {
		i := n - 1
		before := surface.Generation()

		loop.Post(func() { coord.SetActiveIndex(i) })
		if err = loop.RunUntilIdle(ctx); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, tui.HeaderStyle.Render(fmt.Sprintf("Step %d: %s", n, sb.Label(i))))
		describeStep(out, sb, coord, surface, loaders[i], i, before, width)
		_, _ = fmt.Fprintln(out)
	}

	p := coord.Progress()
	_, _ = fmt.Fprintf(out, "%d/%d charts loaded, %d failed\n", p.Loaded, p.Total, p.Failed)
	return nil
}

// describeStep prints what the surface shows after step i was activated.
func describeStep(
	out io.Writer,
	sb *story.Storyboard,
	coord *coordinator.Coordinator,
	surface *chart.Surface,
	l *loader.Loader,
	i int,
	before uint64,
	width int,
) {
	switch {
	case l != nil && l.IsFailed():
		_, _ = fmt.Fprintln(out, tui.ErrorStyle.Render(fmt.Sprintf("data unavailable: %v", l.Err())))
	case surface.Generation() != before:
		if fig, ok := surface.Figure(); ok {
			_, _ = fmt.Fprintln(out, tui.RenderFigure(fig, width))
		} else {
			_, _ = fmt.Fprintln(out, tui.MutedStyle.Render("(nothing to draw)"))
		}
	case l == nil:
		if last := coord.LastDrawnIndex(); last != coordinator.None {
			_, _ = fmt.Fprintln(out, tui.MutedStyle.Render(fmt.Sprintf("(no chart for this step, still showing %s)", sb.Label(last))))
		} else {
			_, _ = fmt.Fprintln(out, tui.MutedStyle.Render("(no chart for this step)"))
		}
	default:
		_, _ = fmt.Fprintln(out, tui.MutedStyle.Render("(chart unchanged)"))
	}
}
