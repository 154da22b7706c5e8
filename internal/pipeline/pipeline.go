package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TobiSchelling/notecrawler/internal/collect"
	"github.com/TobiSchelling/notecrawler/internal/config"
	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/download"
	"github.com/TobiSchelling/notecrawler/internal/extract"
	"github.com/TobiSchelling/notecrawler/internal/fetch"
	"github.com/TobiSchelling/notecrawler/internal/hashtag"
	"github.com/TobiSchelling/notecrawler/internal/keyword"
	"github.com/TobiSchelling/notecrawler/internal/logging"
	"github.com/TobiSchelling/notecrawler/internal/scrape"
)

// Output file names written by Run.
const (
	HashtagReportName = "top_hashtags.txt"
	KeywordTableName  = "title_analysis.xlsx"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Output string
	Steps  []StepResult
}

// Failed reports whether any step returned an error.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Pipeline wires the configured components for each stage.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger

	// Overridable in tests.
	fetcher   scrape.Fetcher
	tokenizer keyword.Tokenizer
}

// New creates a new pipeline.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	logger = logging.OrDefault(logger)
	f := fetch.NewFetcher(fetch.Options{
		Headers: cfg.Request.HeaderSet(),
		Timeout: cfg.Request.Timeout.Std(),
		Pacer:   fetch.NewPacer(cfg.Request.Delay.Std()),
		Logger:  logger,
	})
	return &Pipeline{cfg: cfg, logger: logger, fetcher: f}
}

// WithFetcher replaces the note page fetcher.
func (p *Pipeline) WithFetcher(f scrape.Fetcher) *Pipeline {
	p.fetcher = f
	return p
}

// WithTokenizer replaces the keyword tokenizer, which otherwise loads the
// segmentation dictionary on first use.
func (p *Pipeline) WithTokenizer(t keyword.Tokenizer) *Pipeline {
	p.tokenizer = t
	return p
}

// Scrape loads input, fetches and extracts every note, and saves the
// augmented dataset to output. A missing URL column fails before any
// request is made and output is not written.
func (p *Pipeline) Scrape(ctx context.Context, input, output string) (*scrape.Result, error) {
	cols := p.cfg.Columns
	var required []string
	if cols.URL != "" {
		required = append(required, cols.URL)
	}
	ds, err := dataset.Load(input, required...)
	if err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "loaded dataset", "path", input, "rows", ds.Len())

	ex := &extract.Extractor{
		DetailSelector:      p.cfg.Extract.DetailSelector,
		HashtagSelector:     p.cfg.Extract.HashtagSelector,
		ReadabilityFallback: p.cfg.Extract.ReadabilityFallback,
	}
	s := scrape.NewScraper(p.fetcher, ex, scrape.Options{
		URLColumn:    cols.URL,
		DetailColumn: cols.DetailOutput,
		TagsColumn:   cols.TagsOutput,
	}, p.logger)

	res, err := s.Scrape(ctx, ds)
	if err != nil {
		return res, err
	}

	p.logger.InfoContext(ctx, "saving dataset", "path", output)
	if err := ds.Save(output); err != nil {
		return res, err
	}
	return res, nil
}

// Hashtags aggregates column of input and writes the top-K report. An empty
// column means the configured hashtag column; topK <= 0 the configured one.
func (p *Pipeline) Hashtags(ctx context.Context, input, report, column string, topK int) (*hashtag.Result, error) {
	if column == "" {
		column = p.cfg.Columns.Hashtags
	}
	if topK <= 0 {
		topK = p.topK()
	}
	ds, err := dataset.Load(input, column)
	if err != nil {
		return nil, err
	}

	res, err := hashtag.NewAggregator(p.logger).Aggregate(ctx, ds, column)
	if err != nil {
		return nil, err
	}
	if err := hashtag.SaveReport(report, res.Counts, topK); err != nil {
		return res, err
	}
	p.logger.InfoContext(ctx, "hashtag report saved", "path", report)
	return res, nil
}

// Keywords extracts title keywords from column of input and writes the
// keyword table.
func (p *Pipeline) Keywords(ctx context.Context, input, table, column string) (*keyword.Result, error) {
	if column == "" {
		column = p.cfg.Columns.Title
	}
	ds, err := dataset.Load(input, column)
	if err != nil {
		return nil, err
	}

	ranker, err := p.ranker()
	if err != nil {
		return nil, err
	}
	res, err := keyword.NewAggregator(ranker, p.cfg.Report.KeywordsPerTitle, p.logger).Aggregate(ctx, ds, column)
	if err != nil {
		return nil, err
	}
	if err := keyword.Save(table, res.Entries); err != nil {
		return res, err
	}
	p.logger.InfoContext(ctx, "keyword table saved", "path", table)
	return res, nil
}

// Download saves qualifying cover images of input into dir. An empty dir
// means the configured directory next to the input file.
func (p *Pipeline) Download(ctx context.Context, input, dir string) (*download.Result, error) {
	dc := p.cfg.Download
	criteria := download.Criteria{
		FollowersColumn:   dc.FollowersColumn,
		InteractionColumn: dc.InteractionColumn,
		CoverColumn:       dc.CoverColumn,
		MaxFollowers:      dc.MaxFollowers,
		MinInteractions:   dc.MinInteractions,
	}
	ds, err := dataset.Load(input, criteria.FollowersColumn, criteria.InteractionColumn, criteria.CoverColumn)
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = dc.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(input), dir)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	f := fetch.NewFetcher(fetch.Options{
		Timeout: dc.Timeout.Std(),
		Pacer:   fetch.NewPacer(dc.Delay.Std()),
		Logger:  p.logger,
	})
	return download.NewDownloader(f, criteria, p.logger).Run(ctx, ds, dir)
}

// Collect parses the configured feeds and saves them as an input dataset.
func (p *Pipeline) Collect(ctx context.Context, output string) (*collect.Result, error) {
	if len(p.cfg.Collect.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured under collect.feeds")
	}
	feeds := make([]collect.FeedConfig, len(p.cfg.Collect.Feeds))
	for i, f := range p.cfg.Collect.Feeds {
		feeds[i] = collect.FeedConfig{URL: f.URL, Name: f.Name}
	}

	res := collect.NewCollector(feeds, p.logger).Collect(ctx)
	if err := collect.ToDataset(res.Entries).Save(output); err != nil {
		return res, err
	}
	return res, nil
}

// Run scrapes input into outDir, then runs both analyses on the scraped
// dataset. The analyses only run when the scrape succeeded; a failure in
// one analysis does not stop the other.
func (p *Pipeline) Run(ctx context.Context, input, outDir string) *Result {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	processed := filepath.Join(outDir, base+"_processed"+filepath.Ext(input))
	r := &Result{Output: processed}

	// Step 1: Scrape
	p.logger.InfoContext(ctx, "step 1/3: scraping notes")
	sres, err := p.Scrape(ctx, input, processed)
	step := StepResult{Name: "Scrape", Err: err}
	if err == nil {
		step.Summary = fmt.Sprintf("Scraped %d notes: %d fetched, %d failed, %d empty", len(sres.Rows), sres.Fetched, sres.Failed, sres.Empty)
	}
	r.Steps = append(r.Steps, step)
	if err != nil {
		return r
	}

	// Step 2: Hashtags
	p.logger.InfoContext(ctx, "step 2/3: analyzing hashtags")
	hres, err := p.Hashtags(ctx, processed, filepath.Join(outDir, HashtagReportName), p.cfg.Columns.TagsOutput, 0)
	step = StepResult{Name: "Hashtags", Err: err}
	if err == nil {
		step.Summary = fmt.Sprintf("Counted %d distinct hashtags across %d rows", hres.Distinct, hres.Rows)
	}
	r.Steps = append(r.Steps, step)

	// Step 3: Keywords
	p.logger.InfoContext(ctx, "step 3/3: analyzing titles")
	kres, err := p.Keywords(ctx, processed, filepath.Join(outDir, KeywordTableName), "")
	step = StepResult{Name: "Keywords", Err: err}
	if err == nil {
		step.Summary = fmt.Sprintf("Extracted %d keywords from %d titles", len(kres.Entries), kres.Titles)
	}
	r.Steps = append(r.Steps, step)

	return r
}

func (p *Pipeline) topK() int {
	if p.cfg.Report.TopK > 0 {
		return p.cfg.Report.TopK
	}
	return hashtag.DefaultTopK
}

func (p *Pipeline) ranker() (*keyword.Ranker, error) {
	if p.tokenizer == nil {
		t, err := keyword.NewGseTokenizer()
		if err != nil {
			return nil, err
		}
		p.tokenizer = t
	}

	var idf *keyword.IDF
	if path := p.cfg.Report.IDFFile; path != "" {
		var err error
		idf, err = keyword.LoadIDF(path)
		if err != nil {
			return nil, err
		}
	}

	stop := keyword.DefaultStopWords
	if len(p.cfg.Report.StopWords) > 0 {
		stop = append(append([]string(nil), stop...), p.cfg.Report.StopWords...)
	}
	return keyword.NewRanker(p.tokenizer, idf, stop), nil
}
