package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rshade/scrollviz/internal/logging"
)

// StoryOverlayName is the optional per-storyboard config file, looked up next
// to the manifest.
const StoryOverlayName = ".scrollviz.yaml"

// Top-level YAML config key names used for shallow merge.
const (
	keyLogging = "logging"
	keyFetch   = "fetch"
	keyExport  = "export"
	keyView    = "view"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// target. A key present in the overlay replaces the whole section, with fields
// the overlay omits taken from the defaults; absent keys are left unchanged.
// Unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = mergeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// mergeSection decodes node over the section's defaults before assigning, so
// the section is replaced rather than merged field by field.
func mergeSection(target *Config, key string, node *yaml.Node) error {
	defaults := Default()
	switch key {
	case keyLogging:
		v := defaults.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyFetch:
		v := defaults.Fetch
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Fetch = v
	case keyExport:
		v := defaults.Export
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Export = v
	case keyView:
		v := defaults.View
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.View = v
	}
	return nil
}

// WithStoryDir returns a copy of base with the overlay in storyDir merged on
// top. A missing overlay returns an unchanged copy; an unreadable one is
// logged and ignored. The logging section always comes from base: logging is
// set up before any storyboard is read.
func WithStoryDir(ctx context.Context, base *Config, storyDir string) *Config {
	merged := *base
	if storyDir == "" {
		return &merged
	}

	overlayPath := filepath.Join(storyDir, StoryOverlayName)
	if _, err := os.Stat(overlayPath); err != nil {
		return &merged
	}

	if err := ShallowMergeYAML(&merged, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Str("operation", "merge_story_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge storyboard config, using global settings")
		copyBase := *base
		return &copyBase
	}

	if merged.Logging != base.Logging {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Str("overlay_path", overlayPath).
			Msg("logging settings in a storyboard config are ignored")
		merged.Logging = base.Logging
	}
	return &merged
}
