package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/vote-projector/internal/logger"
	"golang.org/x/net/html/charset"
)

const (
	DefaultURL           = "https://pastebin.com/raw/ukBuqaYw"
	UserAgent            = "vote-projector/1.0 (github.com/pfrederiksen/vote-projector)"
	Timeout              = 30 * time.Second
	DefaultRetryInterval = 500 * time.Millisecond
)

// ErrUnexpectedStatus is wrapped by StatusError
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError reports a non-success HTTP response
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Transient reports whether retrying the request could succeed
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Options configures a Scraper
type Options struct {
	URL     string
	Timeout time.Duration
	// Retries is the number of additional attempts after a transient failure
	Retries       int
	RetryInterval time.Duration
	Logger        *logger.Logger
	Metrics       *logger.Metrics
}

// Scraper fetches election-results pages and parses them into documents
type Scraper struct {
	client        *http.Client
	url           string
	retries       int
	retryInterval time.Duration
	log           *logger.Logger
	metrics       *logger.Metrics
	parse         func(io.Reader, string) (*goquery.Document, error)
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = Timeout
	}
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		url:           url,
		retries:       retries,
		retryInterval: interval,
		log:           log,
		metrics:       opts.Metrics,
		parse:         ParseDocument,
	}
}

// URL returns the source the scraper fetches
func (s *Scraper) URL() string {
	return s.url
}

// Fetch downloads the results page and parses it into a document.
// Non-success responses and transport failures are returned as errors;
// transient ones are retried up to the configured number of times. A body
// that fails to decode or parse is never retried.
func (s *Scraper) Fetch(ctx context.Context) (*goquery.Document, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordTiming("fetch.duration", time.Since(start))
	}()

	var doc *goquery.Document
	attempt := 0
	operation := func() error {
		attempt++
		s.metrics.IncrCounter("fetch.attempts")

		d, err := s.fetchOnce(ctx)
		if err == nil {
			doc = d
			return nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return err
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Transient() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		s.log.Warn("Fetch attempt failed", logger.Fields{
			"url":     s.url,
			"attempt": attempt,
		})
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.retries)), ctx))
	if err != nil {
		return nil, err
	}

	s.log.Info("Fetched results page", logger.Fields{
		"url":      s.url,
		"attempts": attempt,
	})
	return doc, nil
}

func (s *Scraper) fetchOnce(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	doc, err := s.parse(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return doc, nil
}

// LoadFile parses a results page saved on disk
func LoadFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return ParseDocument(f, "")
}

// ParseDocument decodes r to UTF-8 using the content type (or the document's
// own meta charset when the header names none) and parses it as HTML.
func ParseDocument(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
