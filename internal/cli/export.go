package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/scrollviz/internal/export"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var (
		outDir string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "export <storyboard>",
		Short: "Render every chart to PNG",
		Long: `Walks the storyboard top to bottom and writes one PNG per chart step, named
step-NN.png after the step number. Steps whose data cannot be loaded are
reported and skipped; the export exits with status 2 if any failed.`,
		Example: `  scrollviz export storyboard.yaml --out charts/ --width 1280 --height 720`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], outDir, width, height)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: export.dir)")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (default: export.width)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (default: export.height)")

	return cmd
}

func runExport(cmd *cobra.Command, path, outDir string, width, height int) error {
	sb, cfg, err := loadStory(cmd, path)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.Export.Dir
	}
	if width <= 0 {
		width = cfg.Export.Width
	}
	if height <= 0 {
		height = cfg.Export.Height
	}

	painter, err := export.NewPainter(width, height)
	if err != nil {
		return err
	}
	exporter := export.New(outDir, painter,
		export.WithFetcher(fetcherFor(sb, cfg)),
		export.WithLogger(logger),
	)

	results, err := exporter.Export(cmd.Context(), sb)
	for _, res := range results {
		switch {
		case res.Err != nil:
			cmd.Printf("✗ step %d (%s): %v\n", res.Step+1, res.Label, res.Err)
		case res.Skipped:
			cmd.Printf("! step %d (%s): nothing to draw\n", res.Step+1, res.Label)
		default:
			cmd.Printf("✓ step %d (%s): %s\n", res.Step+1, res.Label, res.Path)
		}
	}
	if err != nil {
		return &ExitError{Code: ExitProblems, Err: err}
	}
	return nil
}
