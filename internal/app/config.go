package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
// It carries only what the command line decides; everything else lives in
// the config file.
type Config struct {
	ConfigPath string // json or hcl file

	LogFormat string
	LogLevel  string

	// Workers overrides the file's worker bound when > 0.
	Workers int

	// CopyCards overrides the file's copy_cards toggle when non-nil.
	CopyCards *bool

	// DryRun prints the plan and exits before the confirmation gate.
	DryRun bool

	// AssumeYes skips the confirmation gate.
	AssumeYes bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
