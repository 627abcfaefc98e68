package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/boardcopy/internal/app"
)

// Version is stamped by the build; the default identifies dev builds.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("boardcopy", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
boardcopy - Copy a template board's lists (and cards) onto other Trello boards.

Usage:
  boardcopy [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a .json or .hcl configuration file. Defaults to 'boardcopy.json'.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file.")
	cFlag := flagSet.String("c", "", "Path to the configuration file (shorthand).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Override the number of concurrent destination boards. 0 uses the config file value.")
	copyCardsFlag := flagSet.Bool("copy-cards", false, "Override the config file's copy_cards toggle.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the copy plan and exit without mutating anything.")
	yesFlag := flagSet.Bool("yes", false, "Skip the confirmation gate.")
	versionFlag := flagSet.Bool("version", false, "Print the version and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *versionFlag {
		fmt.Fprintf(output, "boardcopy %s\n", Version)
		return nil, true, nil
	}

	path := "boardcopy.json"
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Config path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be a positive number"}
	}
	slog.Debug("CLI parameter validation complete.")

	// The copy-cards flag only overrides the file when it was given
	// explicitly; a default false must not clobber a true in the file.
	var copyCards *bool
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == "copy-cards" {
			copyCards = copyCardsFlag
		}
	})

	config, err := app.NewConfig(app.Config{
		ConfigPath: path,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Workers:    *workersFlag,
		CopyCards:  copyCards,
		DryRun:     *dryRunFlag,
		AssumeYes:  *yesFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config_path", config.ConfigPath)
	return config, false, nil
}
