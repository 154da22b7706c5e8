// Package fetch retrieves note pages and cover images over HTTP, one request
// at a time, behind a politeness pacer.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/TobiSchelling/notecrawler/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Error is returned for any transport failure or non-2xx response.
type Error struct {
	URL    string
	Status int // 0 for transport errors
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: status %d %s", e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures a Fetcher.
type Options struct {
	Headers map[string]string
	Timeout time.Duration
	Pacer   Pacer
	Logger  *slog.Logger
}

// Fetcher issues single GET requests with a fixed header set. It never
// retries: one failed attempt is final for that URL.
type Fetcher struct {
	client *resty.Client
	pacer  Pacer
	logger *slog.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Pacer == nil {
		opts.Pacer = NoopPacer{}
	}
	logger := logging.OrDefault(opts.Logger)

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeaders(opts.Headers).
		SetLogger(restyLogger{logger})

	return &Fetcher{
		client: client,
		pacer:  opts.Pacer,
		logger: logger,
	}
}

// Fetch waits for a pacer slot, then GETs url and returns the body as text.
// Failures are logged with the URL and returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.WarnContext(ctx, "fetch failed", "url", url, "err", err)
		return "", err
	}
	f.logger.DebugContext(ctx, "fetched", "url", url, "bytes", len(body))
	return string(body), nil
}

// Download fetches url and writes the body to path, creating parent
// directories as needed.
func (f *Fetcher) Download(ctx context.Context, url, path string) error {
	body, err := f.get(ctx, url)
	if err != nil {
		f.logger.WarnContext(ctx, "download failed", "url", url, "err", err)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	f.logger.DebugContext(ctx, "downloaded", "url", url, "path", path, "bytes", len(body))
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	if code := res.StatusCode(); code < 200 || code > 299 {
		return nil, &Error{URL: url, Status: code}
	}
	return res.Body(), nil
}

// restyLogger routes resty's internal messages into slog. Request errors
// are returned to and logged by the caller, so resty's copy goes to debug.
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...))
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...))
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...))
}
