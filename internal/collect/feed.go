// Package collect seeds an input dataset of note URLs from RSS/Atom feeds,
// for instance an RSSHub feed of a creator's notes.
package collect

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

// Columns of a collected dataset. URL comes first so the result can be fed
// straight into a scrape.
const (
	ColumnURL       = "URL"
	ColumnTitle     = "笔记标题"
	ColumnHashtags  = "话题标签"
	ColumnPublished = "发布日期"
	ColumnSource    = "来源"
)

// Entry represents a parsed feed entry.
type Entry struct {
	URL           string
	Title         string
	Hashtags      []string
	PublishedDate string // YYYY-MM-DD or empty
	Source        string
}

// FeedConfig represents a single feed configuration.
type FeedConfig struct {
	URL  string
	Name string
}

// Result holds the results of a collection run.
type Result struct {
	Entries    []Entry
	Duplicates int
	FailedFeed int
	Sources    map[string]int
}

// Collector parses the configured feeds.
type Collector struct {
	feeds  []FeedConfig
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewCollector creates a new collector.
func NewCollector(feeds []FeedConfig, logger *slog.Logger) *Collector {
	return &Collector{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		logger: logging.OrDefault(logger),
	}
}

// Collect parses every feed in order. A feed that fails is logged and
// skipped; entries already seen under the same URL are dropped.
func (c *Collector) Collect(ctx context.Context) *Result {
	r := &Result{Sources: make(map[string]int)}
	seen := make(map[string]struct{})

	for _, fc := range c.feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}

		feed, err := c.parser.ParseURLWithContext(fc.URL, ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "failed to parse feed", "url", fc.URL, "err", err)
			r.FailedFeed++
			continue
		}

		added := 0
		for _, item := range feed.Items {
			entry := parseItem(item, name)
			if entry == nil {
				continue
			}
			if _, dup := seen[entry.URL]; dup {
				r.Duplicates++
				continue
			}
			seen[entry.URL] = struct{}{}
			r.Entries = append(r.Entries, *entry)
			r.Sources[name]++
			added++
		}
		c.logger.InfoContext(ctx, "parsed feed", "source", name, "entries", added)
	}

	c.logger.InfoContext(ctx, "collection complete", "entries", len(r.Entries), "duplicates", r.Duplicates, "failed_feeds", r.FailedFeed)
	return r
}

func parseItem(item *gofeed.Item, source string) *Entry {
	itemURL := strings.TrimSpace(item.Link)
	if itemURL == "" {
		itemURL = strings.TrimSpace(item.GUID)
	}
	if itemURL == "" || !strings.HasPrefix(itemURL, "http") {
		return nil
	}

	var publishedDate string
	if item.PublishedParsed != nil {
		publishedDate = item.PublishedParsed.Format("2006-01-02")
	} else if item.UpdatedParsed != nil {
		publishedDate = item.UpdatedParsed.Format("2006-01-02")
	}

	var tags []string
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, c)
		}
	}

	return &Entry{
		URL:           itemURL,
		Title:         strings.TrimSpace(item.Title),
		Hashtags:      tags,
		PublishedDate: publishedDate,
		Source:        source,
	}
}

// ToDataset lays the entries out as an input dataset for a scrape.
func ToDataset(entries []Entry) *dataset.Dataset {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.URL, e.Title, strings.Join(e.Hashtags, ","), e.PublishedDate, e.Source}
	}
	return dataset.New([]string{ColumnURL, ColumnTitle, ColumnHashtags, ColumnPublished, ColumnSource}, rows)
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	name := host
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	if name == "" {
		return feedURL
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
