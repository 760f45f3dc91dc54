package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rshade/scrollviz/internal/logging"
)

// LoggingConfig is the logging section.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File, when set, sends logs to a file instead of stderr. The interactive
	// reader always logs to a file (or nowhere).
	File string `yaml:"file,omitempty"`
}

func defaultLogging() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: logging.FormatConsole,
	}
}

// Validate checks the format name.
func (lc LoggingConfig) Validate() error {
	switch strings.ToLower(lc.Format) {
	case "", logging.FormatJSON, logging.FormatConsole, logging.FormatText:
		return nil
	default:
		return fmt.Errorf("%w: logging.format %q is not one of json, console, text", ErrInvalidConfig, lc.Format)
	}
}

// ToLoggingConfig converts the section to a logging.Config. A configured file
// selects file output; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// DefaultLogFile returns the log file used by the interactive reader when
// none is configured.
func DefaultLogFile() string {
	dir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "scrollviz.log")
	}
	return filepath.Join(dir, "logs", "scrollviz.log")
}

// GetLoggingConfig returns a copy of the global logging section.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
