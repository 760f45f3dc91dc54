package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/scrollviz/internal/config"
	"github.com/rshade/scrollviz/internal/loader"
	"github.com/rshade/scrollviz/internal/story"
)

// loadStory reads the storyboard at path and the configuration that applies
// to it: the global config with the storyboard's own overlay merged on top.
func loadStory(cmd *cobra.Command, path string) (*story.Storyboard, *config.Config, error) {
	sb, err := story.Load(path)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.WithStoryDir(cmd.Context(), config.GetGlobalConfig(), sb.Dir)
	if err = cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Debug().Ctx(cmd.Context()).
		Str("storyboard", sb.Path).
		Int("steps", len(sb.Steps)).
		Int("charts", sb.ChartCount()).
		Msg("storyboard loaded")
	return sb, cfg, nil
}

// fetcherFor returns the data file fetcher for sb under cfg.
func fetcherFor(sb *story.Storyboard, cfg *config.Config) loader.SourceFetcher {
	return sb.Fetcher(loader.HTTPFetcher{Timeout: cfg.Fetch.HTTPTimeout})
}
