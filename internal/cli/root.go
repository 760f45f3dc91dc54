package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/scrollviz/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationLogs marks commands whose logs must not reach the terminal.
const (
	annotationLogs = "scrollviz/logs"
	logsToFile     = "file"
)

// NewRootCmd creates the root Cobra command for the scrollviz CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:   "scrollviz",
		Short: "Scroll-driven chart storyboards in the terminal",
		Long: `scrollviz reads a storyboard (narrative steps, each optionally bound to a
CSV data file and a chart kind) and shows the chart for whichever step is in
view. Data files load lazily, one at a time, the active step first.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			result, err := setupLogging(cmd)
			if err != nil {
				return err
			}
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default ~/.scrollviz/config.yaml)")
	cmd.AddCommand(
		NewViewCmd(),
		NewPlayCmd(),
		NewExportCmd(),
		NewCheckCmd(),
		newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Read a storyboard interactively
  scrollviz view stories/faith/storyboard.yaml

  # Replay a scroll sequence without a terminal UI
  scrollviz play stories/faith/storyboard.yaml --steps 1,2,5,3

  # Export every chart to PNG
  scrollviz export stories/faith/storyboard.yaml --out charts/

  # Verify every data file loads and charts
  scrollviz check stories/faith/storyboard.yaml

  # Initialize configuration
  scrollviz config init`
