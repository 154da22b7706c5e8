// Package hashtag counts hashtag frequency across a dataset and renders the
// ranked top-K report.
package hashtag

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

const (
	DefaultColumn = "话题标签"
	DefaultTopK   = 50
	logTopN       = 10
)

// Count is one tag and how many times it was seen.
type Count struct {
	Tag   string
	Count int
}

// SplitTags splits a hashtag cell on commas (ASCII or full-width), trims
// whitespace and '#' markers from each piece and drops empties.
func SplitTags(cell string) []string {
	pieces := strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == '，' })
	tags := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if tag := Normalize(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Normalize strips surrounding whitespace and '#' markers from a tag.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	tag = strings.TrimRight(tag, "#")
	return strings.TrimSpace(tag)
}

// Counter accumulates tag counts and remembers first-seen order.
type Counter struct {
	counts map[string]int
	order  []string
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Add(tag string) {
	if _, seen := c.counts[tag]; !seen {
		c.order = append(c.order, tag)
	}
	c.counts[tag]++
}

// Len returns the number of distinct tags.
func (c *Counter) Len() int { return len(c.order) }

// Counts returns every tag sorted by descending count. Equal counts keep
// first-seen order.
func (c *Counter) Counts() []Count {
	out := make([]Count, len(c.order))
	for i, tag := range c.order {
		out[i] = Count{Tag: tag, Count: c.counts[tag]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Result holds the outcome of an aggregation run.
type Result struct {
	Rows     int // rows in the dataset
	Tagged   int // rows with a non-empty hashtag cell
	Distinct int
	Counts   []Count
}

// Top returns at most k leading entries.
func (r *Result) Top(k int) []Count {
	return Top(r.Counts, k)
}

// Top returns at most k leading entries of counts.
func Top(counts []Count, k int) []Count {
	if k < 0 || k >= len(counts) {
		return counts
	}
	return counts[:k]
}

// Aggregator scans a hashtag column of a dataset.
type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logging.OrDefault(logger)}
}

// Aggregate counts the tags in column. It returns a *dataset.SchemaError
// before reading any row when the column is missing.
func (a *Aggregator) Aggregate(ctx context.Context, ds *dataset.Dataset, column string) (*Result, error) {
	if column == "" {
		column = DefaultColumn
	}
	if err := ds.Require(column); err != nil {
		return nil, err
	}

	cells, _ := ds.Column(column)
	counter := NewCounter()
	r := &Result{Rows: len(cells)}
	for i, cell := range cells {
		a.logger.DebugContext(ctx, "processing hashtags", "row", i+1, "total", len(cells))
		if dataset.IsBlank(cell) {
			continue
		}
		r.Tagged++
		for _, tag := range SplitTags(cell) {
			counter.Add(tag)
		}
	}

	r.Counts = counter.Counts()
	r.Distinct = counter.Len()

	a.logger.InfoContext(ctx, "hashtag analysis complete", "rows", r.Rows, "tagged_rows", r.Tagged, "distinct_tags", r.Distinct)
	for _, c := range Top(r.Counts, logTopN) {
		a.logger.InfoContext(ctx, "top hashtag", "tag", "#"+c.Tag, "count", c.Count)
	}
	return r, nil
}
