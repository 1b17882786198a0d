package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/logger"
	"github.com/pfrederiksen/vote-projector/internal/projection"
	"github.com/pfrederiksen/vote-projector/internal/scraper"
)

const fixturePath = "../../testdata/fixtures/county_results.html"

type recordingNotifier struct {
	got *projection.StateProjection
	err error
}

func (n *recordingNotifier) Notify(sp *projection.StateProjection) error {
	n.got = sp
	return n.err
}

func TestRun_File(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := Run(context.Background(), RunOptions{
		File:  fixturePath,
		State: "Pennsylvania",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"County: County X\n",
		"County: County Y\n",
		"State: Pennsylvania\n",
		"Estimated Error Margin: 23.33%\n",
		"Projected Winner: Trump\n",
		"Total Projected Trump Votes: 1400 (56.00%)\n",
		"Total Projected Harris Votes: 1100 (44.00%)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NoPercent") || strings.Contains(out, "NoTotal") {
		t.Errorf("skipped counties should not be printed on stdout:\n%s", out)
	}

	logs := stderr.String()
	if !strings.Contains(logs, "missing percent-in element") || !strings.Contains(logs, "missing total votes element") {
		t.Errorf("skips should be logged on stderr:\n%s", logs)
	}
}

func TestRun_Fetch(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	rec := &recordingNotifier{}

	err = Run(context.Background(), RunOptions{
		URL:      server.URL,
		Format:   FormatJSON,
		Notifier: rec,
		Verbose:  true,
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(stdout.String(), `"winner_name": "Trump"`) {
		t.Errorf("expected JSON output, got:\n%s", stdout.String())
	}
	if rec.got == nil || len(rec.got.Counties) != 2 {
		t.Errorf("notifier should receive the projection, got %+v", rec.got)
	}
	if !strings.Contains(stderr.String(), "Counties projected: 2, skipped: 2") {
		t.Errorf("verbose report missing:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "fetch.attempts: 1") {
		t.Errorf("fetch metrics missing:\n%s", stderr.String())
	}
}

func TestRun_FetchFailurePrintsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	rec := &recordingNotifier{}

	err := Run(context.Background(), RunOptions{
		URL:           server.URL,
		Retries:       1,
		RetryInterval: time.Millisecond,
		Notifier:      rec,
	}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for failing server")
	}
	var logged *loggedError
	if !errors.As(err, &logged) {
		t.Errorf("fetch failure should already be logged, got %T", err)
	}
	if !errors.Is(err, scraper.ErrUnexpectedStatus) {
		t.Errorf("error should wrap the status failure, got %v", err)
	}

	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty on fetch failure, got:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Error fetching and parsing data") {
		t.Errorf("fetch failure should be logged, got:\n%s", stderr.String())
	}
	if rec.got != nil {
		t.Error("notifier should not be called on fetch failure")
	}
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), RunOptions{File: filepath.Join(t.TempDir(), "missing.html")}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
	if strings.Count(stderr.String(), "\n") != 1 || !strings.Contains(stderr.String(), "Error fetching and parsing data") {
		t.Errorf("stderr should hold exactly the error log line, got:\n%s", stderr.String())
	}
}

func TestRun_LoggerPerRun(t *testing.T) {
	var quiet, loud bytes.Buffer

	if err := Run(context.Background(), RunOptions{File: fixturePath, Log: logger.Config{Level: logger.LevelDebug, Output: &loud}}, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := Run(context.Background(), RunOptions{File: fixturePath}, &bytes.Buffer{}, &quiet); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(loud.String(), `"level":"DEBUG"`) {
		t.Errorf("DEBUG run should log parsed counties, got:\n%s", loud.String())
	}
	if strings.Contains(quiet.String(), `"level":"DEBUG"`) {
		t.Errorf("default run should not inherit the previous run's level, got:\n%s", quiet.String())
	}
}

func TestRun_NotifierError(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("rate limited")}

	err := Run(context.Background(), RunOptions{File: fixturePath, Notifier: rec}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Run() error = %v, want notifier error", err)
	}
	var logged *loggedError
	if !errors.As(err, &logged) {
		t.Errorf("notifier failure should already be logged, got %T", err)
	}
}

func TestRun_DryRunNotify(t *testing.T) {
	var stdout bytes.Buffer
	err := Run(context.Background(), RunOptions{File: fixturePath, Notify: NotifyDryRun}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(stdout.String(), "--- Tweet ---") {
		t.Errorf("dry-run tweet missing from stdout:\n%s", stdout.String())
	}
}

func TestRootCmd(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut []string
	}{
		{
			name:    "file with state",
			args:    []string{"--file", fixturePath, "--state", "Pennsylvania"},
			wantOut: []string{"State: Pennsylvania", "Projected Winner: Trump"},
		},
		{
			name:    "custom candidates",
			args:    []string{"--file", fixturePath, "--candidate-a", "Harris", "--candidate-b", "Trump"},
			wantOut: []string{"Total Projected Harris Votes: 1100 (44.00%)", "Projected Winner: Trump"},
		},
		{
			name:    "json format",
			args:    []string{"--file", fixturePath, "--format", "JSON"},
			wantOut: []string{`"projected_a_total": 1400`},
		},
		{
			name:    "invalid format",
			args:    []string{"--file", fixturePath, "--format", "xml"},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			args:    []string{"--file", fixturePath, "--log-level", "loud"},
			wantErr: true,
		},
		{
			name:    "invalid notify",
			args:    []string{"--file", fixturePath, "--notify", "email"},
			wantErr: true,
		},
		{
			name:    "identical candidates",
			args:    []string{"--file", fixturePath, "--candidate-a", "Trump", "--candidate-b", "Trump"},
			wantErr: true,
		},
		{
			name:    "explicit missing config",
			args:    []string{"--file", fixturePath, "--config", "/nonexistent/config.toml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := NewRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)

			err := cmd.Execute()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout.String())
				}
			}
		})
	}
}

func TestResolve_ConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
url = "https://example.com/pa"
state = "Pennsylvania"

[candidates.a]
name = "Donald Trump"
pattern = "Trump"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("config values apply", func(t *testing.T) {
		f := &flags{}
		cmd := newRootCmd(f)
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatal(err)
		}

		opts, err := f.resolve(cmd)
		if err != nil {
			t.Fatalf("resolve() error: %v", err)
		}
		if opts.URL != "https://example.com/pa" || opts.State != "Pennsylvania" {
			t.Errorf("opts = %+v", opts)
		}
		if opts.Candidates.A.Name != "Donald Trump" || opts.Candidates.B != county.DefaultCandidates().B {
			t.Errorf("candidates = %+v", opts.Candidates)
		}
		if opts.Log.Level != logger.LevelError {
			t.Errorf("log level = %q, want ERROR", opts.Log.Level)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		f := &flags{}
		cmd := newRootCmd(f)
		if err := cmd.ParseFlags([]string{"--config", path, "--state", "Ohio", "--url", "https://example.com/oh"}); err != nil {
			t.Fatal(err)
		}

		opts, err := f.resolve(cmd)
		if err != nil {
			t.Fatalf("resolve() error: %v", err)
		}
		if opts.State != "Ohio" || opts.URL != "https://example.com/oh" {
			t.Errorf("opts = %+v", opts)
		}
	})
}
