// Package download fetches cover images for notes from small accounts that
// still drew strong engagement.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

// Criteria selects which rows qualify and where their cover URL lives.
type Criteria struct {
	FollowersColumn   string
	InteractionColumn string
	CoverColumn       string
	// A row qualifies when followers < MaxFollowers and
	// interactions > MinInteractions.
	MaxFollowers    float64
	MinInteractions float64
}

// DefaultCriteria matches accounts under 1000 followers with more than 100
// interactions.
func DefaultCriteria() Criteria {
	return Criteria{
		FollowersColumn:   "粉丝数",
		InteractionColumn: "互动量",
		CoverColumn:       "封面地址",
		MaxFollowers:      1000,
		MinInteractions:   100,
	}
}

// Candidate is a qualifying row.
type Candidate struct {
	Index int
	URL   string
}

// Filter returns the qualifying rows with a non-empty cover URL, in row
// order. Rows whose numbers cannot be parsed do not qualify.
func Filter(ds *dataset.Dataset, c Criteria) (matched int, out []Candidate, err error) {
	if err := ds.Require(c.FollowersColumn, c.InteractionColumn, c.CoverColumn); err != nil {
		return 0, nil, err
	}
	for i := 0; i < ds.Len(); i++ {
		followers, ok1 := ParseCount(ds.Value(i, c.FollowersColumn))
		interactions, ok2 := ParseCount(ds.Value(i, c.InteractionColumn))
		if !ok1 || !ok2 || followers >= c.MaxFollowers || interactions <= c.MinInteractions {
			continue
		}
		matched++
		cover := strings.TrimSpace(ds.Value(i, c.CoverColumn))
		if cover == "" {
			continue
		}
		out = append(out, Candidate{Index: i, URL: cover})
	}
	return matched, out, nil
}

// ParseCount reads counts as exported by note platforms: plain numbers,
// thousands separators, and the 万 (ten thousand) or k/w suffixes.
func ParseCount(s string) (float64, bool) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "万"):
		mult, s = 10000, strings.TrimSuffix(s, "万")
	case strings.HasSuffix(s, "w"):
		mult, s = 10000, strings.TrimSuffix(s, "w")
	case strings.HasSuffix(s, "k"):
		mult, s = 1000, strings.TrimSuffix(s, "k")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}

// FileName derives a file name from the URL path, falling back to
// image_<index>.jpg when the path has no usable base name.
func FileName(rawURL string, index int) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "/" || name == "." || !strings.Contains(name, ".") {
		return fmt.Sprintf("image_%d.jpg", index)
	}
	return name
}

// Getter writes the body at a URL to a file.
type Getter interface {
	Download(ctx context.Context, url, path string) error
}

// Result holds the results of a download run.
type Result struct {
	Dir        string
	Matched    int
	Downloaded int
	Failed     int
}

// Downloader saves cover images one at a time.
type Downloader struct {
	getter   Getter
	criteria Criteria
	logger   *slog.Logger
}

// NewDownloader creates a new downloader.
func NewDownloader(g Getter, c Criteria, logger *slog.Logger) *Downloader {
	return &Downloader{getter: g, criteria: c, logger: logging.OrDefault(logger)}
}

// Run downloads every qualifying cover of ds into dir. Individual failures
// are logged and counted; only a schema problem is returned as an error.
func (d *Downloader) Run(ctx context.Context, ds *dataset.Dataset, dir string) (*Result, error) {
	matched, candidates, err := Filter(ds, d.criteria)
	if err != nil {
		return nil, err
	}

	r := &Result{Dir: dir, Matched: matched}
	d.logger.InfoContext(ctx, "matched rows", "count", matched)

	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		target := filepath.Join(dir, FileName(c.URL, c.Index))
		d.logger.InfoContext(ctx, "downloading cover", "row", c.Index, "url", c.URL)
		if err := d.getter.Download(ctx, c.URL, target); err != nil {
			r.Failed++
			continue
		}
		r.Downloaded++
	}

	d.logger.InfoContext(ctx, "download complete", "matched", r.Matched, "downloaded", r.Downloaded, "failed", r.Failed, "dir", dir)
	return r, ctx.Err()
}
