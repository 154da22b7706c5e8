// Package keyword extracts significant keywords from note titles and
// aggregates, per keyword, how often it occurs and which titles carry it.
package keyword

import (
	"context"
	"log/slog"
	"sort"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

const (
	DefaultColumn   = "笔记标题"
	DefaultPerTitle = 3
	logTopN         = 10
)

// Entry is one keyword with its occurrence count and the distinct titles
// that produced it, in first-seen order.
type Entry struct {
	Keyword string
	Count   int
	Titles  []string
}

// Result holds the outcome of a keyword analysis run.
type Result struct {
	Rows    int // rows in the dataset
	Titles  int // non-empty titles analyzed
	Entries []Entry
}

// Aggregator runs a Ranker over every title of a dataset.
type Aggregator struct {
	ranker   *Ranker
	perTitle int
	logger   *slog.Logger
}

// NewAggregator creates an aggregator keeping perTitle keywords per title.
func NewAggregator(r *Ranker, perTitle int, logger *slog.Logger) *Aggregator {
	if perTitle <= 0 {
		perTitle = DefaultPerTitle
	}
	return &Aggregator{ranker: r, perTitle: perTitle, logger: logging.OrDefault(logger)}
}

type acc struct {
	entry  *Entry
	titles map[string]struct{}
}

// Aggregate analyzes the titles in column. It returns a *dataset.SchemaError
// before reading any row when the column is missing. When the ranker has no
// idf table, one is fitted on the titles of ds first.
func (a *Aggregator) Aggregate(ctx context.Context, ds *dataset.Dataset, column string) (*Result, error) {
	if column == "" {
		column = DefaultColumn
	}
	if err := ds.Require(column); err != nil {
		return nil, err
	}

	cells, _ := ds.Column(column)
	titles := make([]string, 0, len(cells))
	for _, c := range cells {
		if !dataset.IsBlank(c) {
			titles = append(titles, c)
		}
	}

	ranker := a.ranker
	if !ranker.HasIDF() {
		docs := make([][]string, len(titles))
		for i, t := range titles {
			docs[i] = ranker.Terms(t)
		}
		ranker = ranker.WithIDF(FitIDF(docs))
		a.logger.DebugContext(ctx, "fitted idf on titles", "titles", len(titles))
	}

	byKeyword := make(map[string]*acc)
	var order []*acc
	for i, title := range titles {
		a.logger.DebugContext(ctx, "processing title", "title", i+1, "total", len(titles))
		for _, kw := range ranker.Extract(title, a.perTitle) {
			e, ok := byKeyword[kw.Term]
			if !ok {
				e = &acc{
					entry:  &Entry{Keyword: kw.Term},
					titles: make(map[string]struct{}),
				}
				byKeyword[kw.Term] = e
				order = append(order, e)
			}
			e.entry.Count++
			if _, seen := e.titles[title]; !seen {
				e.titles[title] = struct{}{}
				e.entry.Titles = append(e.entry.Titles, title)
			}
		}
	}

	entries := make([]Entry, len(order))
	for i, e := range order {
		entries[i] = *e.entry
	}
	// Equal counts keep first-seen order, as in the hashtag report.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })

	r := &Result{Rows: len(cells), Titles: len(titles), Entries: entries}
	a.logger.InfoContext(ctx, "title analysis complete", "rows", r.Rows, "titles", r.Titles, "keywords", len(entries))
	for _, e := range Top(entries, logTopN) {
		a.logger.InfoContext(ctx, "top keyword", "keyword", e.Keyword, "count", e.Count)
	}
	return r, nil
}

// Top returns at most k leading entries.
func Top(entries []Entry, k int) []Entry {
	if k < 0 || k >= len(entries) {
		return entries
	}
	return entries[:k]
}
