package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/scrollviz/internal/chart"
	"github.com/rshade/scrollviz/internal/dataset"
	"github.com/rshade/scrollviz/internal/loader"
	"github.com/rshade/scrollviz/internal/story"
)

// checkResult is the outcome of checking one chart step.
type checkResult struct {
	Step  int
	Label string
	Kind  string
	Data  string
	Rows  int
	Empty bool
	Err   error
}

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <storyboard>",
		Short: "Verify every data file loads and charts",
		Long: `Fetches every data file the storyboard references, in parallel, and builds
its chart. Exits with status 2 when any step has a problem.`,
		Example: `  scrollviz check stories/faith/storyboard.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sb, cfg, err := loadStory(cmd, args[0])
	if err != nil {
		return err
	}

	results := checkStory(ctx, sb, fetcherFor(sb, cfg), cfg.Fetch.CheckConcurrency)

	var problems error
	for _, res := range results {
		switch {
		case res.Err != nil:
			cmd.Printf("✗ step %d (%s) %s %s: %v\n", res.Step+1, res.Label, res.Kind, res.Data, res.Err)
			problems = multierr.Append(problems, fmt.Errorf("step %d: %w", res.Step+1, res.Err))
		case res.Empty:
			cmd.Printf("! step %d (%s) %s %s: no rows to draw\n", res.Step+1, res.Label, res.Kind, res.Data)
		default:
			cmd.Printf("✓ step %d (%s) %s %s: %d rows\n", res.Step+1, res.Label, res.Kind, res.Data, res.Rows)
		}
	}

	if problems != nil {
		failed := len(multierr.Errors(problems))
		return &ExitError{
			Code: ExitProblems,
			Err:  fmt.Errorf("%d of %d charts have problems: %w", failed, len(results), problems),
		}
	}

	cmd.Printf("Storyboard OK: %d steps, %d charts\n", len(sb.Steps), len(results))
	return nil
}

// checkStory checks every chart step with at most limit fetches in flight.
// Results are in step order.
func checkStory(ctx context.Context, sb *story.Storyboard, fetcher loader.Fetcher, limit int) []checkResult {
	var indices []int
	for i, step := range sb.Steps {
		if step.HasChart() {
			indices = append(indices, i)
		}
	}

	results := make([]checkResult, len(indices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for k, i := range indices {
		g.Go(func() error {
			results[k] = checkStep(gctx, fetcher, i, sb.Label(i), sb.Steps[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkStep(ctx context.Context, fetcher loader.Fetcher, i int, label string, step story.Step) checkResult {
	res := checkResult{Step: i, Label: label, Kind: step.Chart.Kind, Data: step.Chart.Data}

	table, err := fetcher.Fetch(ctx, step.Chart.Data)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", loader.ErrFetch, err)
		return res
	}
	res.Rows = table.Len()

	kind, err := chart.ParseKind(step.Chart.Kind)
	if err != nil {
		res.Err = err
		return res
	}
	if _, err = chart.Build(kind, dataset.CoerceTable(table)); err != nil {
		if errors.Is(err, chart.ErrNothingToDraw) {
			res.Empty = true
			return res
		}
		res.Err = err
	}
	return res
}
