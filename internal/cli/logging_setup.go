package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/scrollviz/internal/config"
	"github.com/rshade/scrollviz/internal/logging"
)

// setupLogging loads the configuration named by --config (or the default),
// applies --debug, and builds the command logger. Commands annotated to log
// to a file never write logs to the terminal.
func setupLogging(cmd *cobra.Command) (logging.LogPathResult, error) {
	cfg := config.New()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return logging.LogPathResult{}, err
		}
		loaded.ApplyEnv()
		cfg = loaded
	}
	config.SetGlobalConfig(cfg)

	loggingCfg := cfg.Logging
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
	}

	toFile := cmd.Annotations[annotationLogs] == logsToFile
	if toFile && loggingCfg.File == "" {
		loggingCfg.File = config.DefaultLogFile()
	}
	if debug && !toFile {
		loggingCfg.File = ""
	}

	logCfg := loggingCfg.ToLoggingConfig()
	logCfg.Caller = debug
	result := logging.NewLoggerWithPath(logCfg)
	if toFile && !result.UsingFile {
		// The reader owns the terminal; drop logs rather than corrupt it.
		result.Logger = logging.NewWriterLogger(io.Discard, logCfg)
	}
	logger = logging.ComponentLogger(result.Logger, "cli")
	if loadErr := cfg.LoadError(); loadErr != nil {
		logger.Warn().Err(loadErr).Str("config", cfg.ConfigPath()).
			Msg("config file unusable, run 'scrollviz config validate'")
	}

	if result.UsingFile && debug {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Str("config", cfg.ConfigPath()).Msg("command started")
	return result, nil
}

// cleanupLogging closes the log file, if any.
func cleanupLogging(cmd *cobra.Command, logResult *logging.LogPathResult) error {
	logger.Debug().Ctx(cmd.Context()).Str("command", cmd.Name()).Msg("command finished")
	if logResult == nil {
		return nil
	}
	if err := logResult.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}
