// Package scrape runs the fetch and extract pass over every row of a
// dataset and appends the extracted fields as new columns.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/extract"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

const (
	DefaultDetailColumn = "笔记详情"
	DefaultTagsColumn   = "笔记话题"
)

// ErrNoURL marks a row whose URL cell is blank.
var ErrNoURL = errors.New("row has no URL")

// Fetcher returns the raw markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor pulls note fields out of markup.
type Extractor interface {
	ExtractPage(markup, pageURL string) (extract.Note, error)
}

// RowResult is the outcome for one input row. Err is set when the page
// could not be fetched or parsed; Note is then empty.
type RowResult struct {
	Index int
	URL   string
	Note  extract.Note
	Err   error
}

// OK reports whether the row was fetched and parsed.
func (r RowResult) OK() bool { return r.Err == nil }

// Result holds the results of a scrape run.
type Result struct {
	Rows    []RowResult
	Fetched int
	Failed  int
	// Empty counts fetched pages where neither field was found.
	Empty int
}

// Options selects the input and output columns.
type Options struct {
	// URLColumn names the column holding note URLs. Empty means the first
	// column, whatever its name.
	URLColumn    string
	DetailColumn string
	TagsColumn   string
}

// Scraper fetches and extracts notes sequentially, in row order.
type Scraper struct {
	fetcher   Fetcher
	extractor Extractor
	opts      Options
	logger    *slog.Logger
}

// NewScraper creates a new scraper.
func NewScraper(f Fetcher, e Extractor, opts Options, logger *slog.Logger) *Scraper {
	if opts.DetailColumn == "" {
		opts.DetailColumn = DefaultDetailColumn
	}
	if opts.TagsColumn == "" {
		opts.TagsColumn = DefaultTagsColumn
	}
	return &Scraper{
		fetcher:   f,
		extractor: e,
		opts:      opts,
		logger:    logging.OrDefault(logger),
	}
}

// URLs returns the URL column of ds, or a *dataset.SchemaError when it is
// missing.
func (s *Scraper) URLs(ds *dataset.Dataset) ([]string, error) {
	if s.opts.URLColumn == "" {
		if ds.Width() == 0 {
			return nil, &dataset.SchemaError{Column: "URL", Path: ds.Path()}
		}
		return ds.ColumnAt(0), nil
	}
	if err := ds.Require(s.opts.URLColumn); err != nil {
		return nil, err
	}
	col, _ := ds.Column(s.opts.URLColumn)
	return col, nil
}

// Scrape processes every row of ds and appends the detail and hashtag
// columns. A failing row gets empty cells and never stops the run; only a
// missing URL column or a cancelled context is returned as an error, and in
// both cases ds is left unmodified.
func (s *Scraper) Scrape(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	urls, err := s.URLs(ds)
	if err != nil {
		return nil, err
	}

	result := &Result{Rows: make([]RowResult, len(urls))}
	details := make([]string, len(urls))
	tags := make([]string, len(urls))

	total := len(urls)
	for i, raw := range urls {
		u := strings.TrimSpace(raw)
		s.logger.InfoContext(ctx, "processing note", "row", fmt.Sprintf("%d/%d", i+1, total), "url", u)

		row := s.scrapeRow(ctx, i, u)
		result.Rows[i] = row
		details[i] = row.Note.Detail
		tags[i] = row.Note.HashtagCell()

		switch {
		case !row.OK():
			result.Failed++
		case row.Note.Detail == "" && len(row.Note.Hashtags) == 0:
			result.Fetched++
			result.Empty++
		default:
			result.Fetched++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("scrape interrupted: %w", err)
	}

	ds.AppendColumn(s.opts.DetailColumn, details)
	ds.AppendColumn(s.opts.TagsColumn, tags)

	s.logger.InfoContext(ctx, "scrape complete", "rows", total, "fetched", result.Fetched, "failed", result.Failed, "empty", result.Empty)
	return result, nil
}

func (s *Scraper) scrapeRow(ctx context.Context, i int, url string) RowResult {
	row := RowResult{Index: i, URL: url, Note: extract.Note{Hashtags: []string{}}}
	if url == "" {
		row.Err = ErrNoURL
		s.logger.WarnContext(ctx, "skipping row without URL", "row", i+1)
		return row
	}

	markup, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		row.Err = err
		return row
	}

	note, err := s.extractor.ExtractPage(markup, url)
	if err != nil {
		row.Err = err
		s.logger.WarnContext(ctx, "extract failed", "url", url, "err", err)
		return row
	}
	row.Note = note
	return row
}
