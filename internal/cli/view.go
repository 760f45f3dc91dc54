package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/scrollviz/internal/tui"
)

// ErrNotTerminal is returned when view is run without a terminal.
var ErrNotTerminal = errors.New("view needs an interactive terminal, try 'scrollviz play'")

// NewViewCmd creates the view command.
func NewViewCmd() *cobra.Command {
	var (
		theme      string
		chartWidth int
	)

	cmd := &cobra.Command{
		Use:   "view <storyboard>",
		Short: "Read a storyboard interactively",
		Long: `Opens the storyboard in a full-screen reader. Scroll the narrative on the
left; the chart on the right follows the step in view. Logs go to
~/.scrollviz/logs/scrollviz.log unless logging.file is set.`,
		Example: `  scrollviz view storyboard.yaml
  scrollviz view storyboard.yaml --theme dracula --chart-width 60`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationLogs: logsToFile},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], theme, chartWidth)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "glamour style: auto, dark, light, dracula, notty, ... (default: view.theme)")
	cmd.Flags().IntVar(&chartWidth, "chart-width", 0, "chart pane width in columns (default: view.chart_width)")

	return cmd
}

func runView(cmd *cobra.Command, path, theme string, chartWidth int) error {
	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return ErrNotTerminal
	}

	ctx := cmd.Context()
	sb, cfg, err := loadStory(cmd, path)
	if err != nil {
		return err
	}
	if theme == "" {
		theme = cfg.View.Theme
	}
	if chartWidth <= 0 {
		chartWidth = cfg.View.ChartWidth
	}

	model := tui.NewModel(ctx, sb,
		tui.WithTheme(tui.ResolveTheme(theme, true)),
		tui.WithChartWidth(chartWidth),
		tui.WithLogger(logger),
		tui.WithFetcher(fetcherFor(sb, cfg)),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}
