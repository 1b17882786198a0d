package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/vote-projector/internal/config"
	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/extract"
	"github.com/pfrederiksen/vote-projector/internal/logger"
	"github.com/pfrederiksen/vote-projector/internal/notifier"
	"github.com/pfrederiksen/vote-projector/internal/projection"
	"github.com/pfrederiksen/vote-projector/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Notification modes
const (
	NotifyNone    = "none"
	NotifyDryRun  = "dry-run"
	NotifyTwitter = "twitter"
)

// loggedError is an error Run has already reported through the run's logger.
// Execute exits on it without printing it again.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string {
	return e.err.Error()
}

func (e *loggedError) Unwrap() error {
	return e.err
}

// RunOptions holds everything one projection run needs
type RunOptions struct {
	URL           string
	File          string
	State         string
	Candidates    county.CandidateTable
	Selectors     extract.Selectors
	Format        OutputFormat
	Log           logger.Config
	Retries       int
	Timeout       time.Duration
	Notify        string
	Verbose       bool
	Notifier      notifier.Notifier // overrides Notify when set
	RetryInterval time.Duration
}

type flags struct {
	url        string
	file       string
	state      string
	candidateA string
	candidateB string
	configPath string
	format     string
	logLevel   string
	retries    int
	timeout    time.Duration
	notify     string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&flags{})
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote-projector",
		Short: "Project statewide election results from partial county reporting",
		Long: `A CLI tool that reads an election-results page, extracts each county's
reporting percentage and candidate tallies, and projects final vote counts
assuming current vote shares hold as the remaining ballots are counted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return Run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&f.url, "url", scraper.DefaultURL, "Results page URL")
	cmd.Flags().StringVar(&f.file, "file", "", "Read the results page from a local file instead of fetching")
	cmd.Flags().StringVar(&f.state, "state", "", "State label for the summary")
	cmd.Flags().StringVar(&f.candidateA, "candidate-a", county.DefaultCandidates().A.Pattern, "Name pattern of the first tracked candidate (case-sensitive)")
	cmd.Flags().StringVar(&f.candidateB, "candidate-b", county.DefaultCandidates().B.Pattern, "Name pattern of the second tracked candidate (case-sensitive)")
	cmd.Flags().StringVar(&f.configPath, "config", config.DefaultPath, "Path to TOML config file")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&f.logLevel, "log-level", string(logger.LevelError), "Minimum log level: DEBUG, INFO, WARN or ERROR")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "Retries on transient fetch failures")
	cmd.Flags().DurationVar(&f.timeout, "timeout", scraper.Timeout, "Per-request fetch timeout")
	cmd.Flags().StringVar(&f.notify, "notify", NotifyNone, "Publish the summary: none, dry-run or twitter")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Report skipped counties and run metrics on stderr")

	return cmd
}

// resolve merges the config file and flags; explicitly set flags win
func (f *flags) resolve(cmd *cobra.Command) (RunOptions, error) {
	changed := cmd.Flags().Changed

	cfg, err := config.Load(f.configPath, changed("config"))
	if err != nil {
		return RunOptions{}, fmt.Errorf("loading config: %w", err)
	}

	format := OutputFormat(strings.ToLower(f.format))
	if format != FormatText && format != FormatJSON {
		return RunOptions{}, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", f.format)
	}

	level, err := logger.ParseLevel(f.logLevel)
	if err != nil {
		return RunOptions{}, err
	}

	notify := strings.ToLower(f.notify)
	switch notify {
	case NotifyNone, NotifyDryRun, NotifyTwitter:
	default:
		return RunOptions{}, fmt.Errorf("invalid notify mode: %s (must be 'none', 'dry-run' or 'twitter')", f.notify)
	}

	opts := RunOptions{
		URL:        f.url,
		File:       f.file,
		State:      f.state,
		Candidates: cfg.Candidates.Table(),
		Selectors:  cfg.Selectors,
		Format:     format,
		Log:        logger.Config{Level: level, Output: cmd.ErrOrStderr()},
		Retries:    f.retries,
		Timeout:    f.timeout,
		Notify:     notify,
		Verbose:    f.verbose,
	}

	if !changed("url") && cfg.URL != "" {
		opts.URL = cfg.URL
	}
	if !changed("state") && cfg.State != "" {
		opts.State = cfg.State
	}
	if changed("candidate-a") {
		opts.Candidates.A = county.Candidate{Name: f.candidateA, Pattern: f.candidateA}
	}
	if changed("candidate-b") {
		opts.Candidates.B = county.Candidate{Name: f.candidateB, Pattern: f.candidateB}
	}

	if err := opts.Candidates.Validate(); err != nil {
		return RunOptions{}, err
	}

	return opts, nil
}

// Run executes one fetch-extract-project pass and writes the report to stdout.
// A fetch or parse failure aborts the run before anything is printed; its only
// trace is the ERROR log line.
func Run(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Log.Output == nil {
		opts.Log.Output = stderr
	}
	if opts.Log.Level == "" {
		opts.Log.Level = logger.LevelError
	}
	log := logger.NewFromConfig(opts.Log)
	metrics := logger.NewMetrics()

	if opts.Format == "" {
		opts.Format = FormatText
	}

	ex, err := extract.New(extract.Options{
		Candidates: opts.Candidates,
		Selectors:  opts.Selectors,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("configuring extractor: %w", err)
	}

	pub, err := newNotifier(opts, stdout)
	if err != nil {
		return err
	}

	doc, source, err := loadDocument(ctx, opts, log, metrics)
	if err != nil {
		log.Error("Error fetching and parsing data", logger.Fields{"source": source}, err)
		return &loggedError{err: fmt.Errorf("fetching results: %w", err)}
	}

	sp := projection.Aggregate(ex.ExtractDocument(doc), projection.Options{
		State:      opts.State,
		Candidates: opts.Candidates,
	})
	metrics.SetGauge("projection.error_margin", sp.ErrorMargin)

	if err := WriteOutput(stdout, sp, opts.Format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.Verbose {
		writeRunReport(stderr, sp, metrics)
	}

	if pub != nil {
		if err := pub.Notify(sp); err != nil {
			log.Error("Failed to publish projection", nil, err)
			return &loggedError{err: fmt.Errorf("publishing projection: %w", err)}
		}
	}

	return nil
}

func loadDocument(ctx context.Context, opts RunOptions, log *logger.Logger, metrics *logger.Metrics) (*goquery.Document, string, error) {
	if opts.File != "" {
		doc, err := scraper.LoadFile(opts.File)
		return doc, opts.File, err
	}

	sc := scraper.New(scraper.Options{
		URL:           opts.URL,
		Timeout:       opts.Timeout,
		Retries:       opts.Retries,
		RetryInterval: opts.RetryInterval,
		Logger:        log,
		Metrics:       metrics,
	})
	doc, err := sc.Fetch(ctx)
	return doc, sc.URL(), err
}

func newNotifier(opts RunOptions, stdout io.Writer) (notifier.Notifier, error) {
	if opts.Notifier != nil {
		return opts.Notifier, nil
	}
	switch opts.Notify {
	case "", NotifyNone:
		return nil, nil
	case NotifyDryRun:
		return notifier.NewDryRunNotifier(stdout), nil
	case NotifyTwitter:
		tw, err := notifier.NewTwitterNotifier(notifier.CredentialsFromEnv())
		if err != nil {
			return nil, fmt.Errorf("initializing Twitter notifier: %w", err)
		}
		return tw, nil
	default:
		return nil, fmt.Errorf("invalid notify mode: %s", opts.Notify)
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		var logged *loggedError
		if !errors.As(err, &logged) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(ExitError)
	}
}
