package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/config"
	"github.com/systemstart/paychain/pkg/dcc"
	"github.com/systemstart/paychain/pkg/endpoints"
	"github.com/systemstart/paychain/pkg/logging"
	"github.com/systemstart/paychain/pkg/processing"
	"github.com/systemstart/paychain/pkg/report"
	"github.com/systemstart/paychain/pkg/results"
)

var version = "dev"

const exitConfigurationError = 1

type options struct {
	settingsFile string
	tests        string
	tags         []string
	includeTags  []string
	excludeTags  []string
	threads      int
	contextFile  string
	verbose      bool
	loggingType  string
	logLevel     string
	logFile      string

	logOutput io.Closer
}

func main() {
	opts := &options{}
	err := newRootCmd(opts).Execute()
	if opts.logOutput != nil {
		_ = opts.logOutput.Close()
	}
	if err != nil {
		var cfgErr *api.ConfigurationError
		if errors.As(err, &cfgErr) {
			slog.Error("configuration error", "error", err)
		} else {
			slog.Error("paychain failed", "error", err)
		}
		os.Exit(exitConfigurationError)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "paychain",
		Short:         "Run CSV-defined test chains against the acquiring API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogging(opts); err != nil {
				return err
			}
			return includeEnv()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTests(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.settingsFile, "settings", config.DefaultSettingsFile, "settings YAML file")
	pf.StringVar(&opts.tests, "tests", "", "tests CSV, looked up in the test suites directory first")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level debug")
	pf.StringVar(&opts.loggingType, "logging-type", logging.Tint, "logging type: json, text or tint")
	pf.StringVar(&opts.logLevel, "log-level", "info", "logging level: debug, info, warn, error")
	pf.StringVar(&opts.logFile, "log-file", "", "append JSON log records to this file")

	f := root.Flags()
	f.StringSliceVar(&opts.tags, "tags", nil, "run only steps carrying all of these tags")
	f.StringSliceVar(&opts.includeTags, "include-tags", nil, "run only steps carrying at least one of these tags (repeatable)")
	f.StringSliceVar(&opts.excludeTags, "exclude-tags", nil, "skip steps carrying any of these tags (repeatable)")
	f.IntVar(&opts.threads, "threads", 0, "number of chains executed in parallel (default from settings)")
	f.StringVar(&opts.contextFile, "context-file", "", "YAML file seeding the dependency context of every chain")

	root.AddCommand(
		newSuitesCmd(opts),
		newTagsCmd(opts),
		newCallTypesCmd(),
		newRunsCmd(opts),
		newVersionCmd(),
	)
	return root
}

func initLogging(opts *options) error {
	level := opts.logLevel
	if opts.verbose {
		level = "debug"
	}

	lo := logging.Options{Type: opts.loggingType, Level: level}
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		opts.logOutput = f
		lo.File = f
	}
	return logging.Initialize(lo)
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
	return nil
}

// loadSettings reads the settings file and applies flag overrides.
func loadSettings(cmd *cobra.Command, opts *options) (config.Settings, error) {
	s, err := config.LoadSettings(opts.settingsFile)
	if err != nil {
		return s, &api.ConfigurationError{File: opts.settingsFile, Err: err}
	}
	if opts.tests != "" {
		s.Tests = opts.tests
	}
	if f := cmd.Flags().Lookup("threads"); f != nil && f.Changed {
		if opts.threads < 1 {
			return s, &api.ConfigurationError{Err: fmt.Errorf("--threads must be at least 1, got %d", opts.threads)}
		}
		s.Threads = opts.threads
	}
	return s, nil
}

func runTests(cmd *cobra.Command, opts *options) error {
	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	set, err := config.Load(settings)
	if err != nil {
		return err
	}

	filter := processing.TagFilter{All: opts.tags, Any: opts.includeTags, Exclude: opts.excludeTags}
	steps := processing.FilterSteps(set.Steps, filter)
	if len(steps) == 0 {
		slog.Warn("no test steps selected", "file", set.TestsFile, "tags", opts.tags, "includeTags", opts.includeTags, "excludeTags", opts.excludeTags)
		return nil
	}
	if !filter.Empty() {
		slog.Info("tag filter applied", "selected", len(steps), "total", len(set.Steps))
	}

	var seed map[string]string
	if opts.contextFile != "" {
		if seed, err = processing.LoadContextFile(opts.contextFile); err != nil {
			return &api.ConfigurationError{File: opts.contextFile, Err: err}
		}
	}

	registry, err := endpoints.Default()
	if err != nil {
		return err
	}
	refs, err := endpoints.NewReferences(settings.References.OperationID, settings.References.MerchantReference)
	if err != nil {
		return &api.ConfigurationError{File: opts.settingsFile, Err: err}
	}

	sink, err := results.Open(settings.Results.CSV, settings.Results.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Error("failed to close results", "error", err)
		}
	}()

	runner := &processing.Runner{
		Registry: registry,
		Tables:   &set.Tables,
		Clients:  processing.NewClients(nil),
		DCC:      dcc.NewManager(settings.DCC.DefaultCurrency),
		Refs:     refs,
		Sink:     sink,
		Seed:     seed,
		Threads:  settings.Threads,
		RunID:    uuid.NewString(),
		Logger:   slog.Default(),
	}
	summary := runner.Run(cmd.Context(), steps)

	slog.Info("results written", "csv", settings.Results.CSV, "database", settings.Results.Database)
	return report.Render(cmd.OutOrStdout(), summary)
}
