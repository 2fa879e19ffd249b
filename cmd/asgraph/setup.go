package main

import (
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-asgraph/pkg/config"
	"github.com/dd0wney/cluso-asgraph/pkg/logging"
)

// loadConfig reads the configuration file, lets override apply the flags
// the user set and validates the result
func loadConfig(opts *rootOptions, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates the run logger. Every entry carries a fresh run id.
func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, string) {
	runID := uuid.NewString()
	logger := logging.NewJSONLogger(w, cfg.Level()).With(logging.RunID(runID))
	logging.SetDefaultLogger(logger)
	return logger, runID
}

// changed reports whether the named flag was set on the command line
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
