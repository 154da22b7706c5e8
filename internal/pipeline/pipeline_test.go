package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/notecrawler/internal/config"
	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/keyword"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

type mapFetcher map[string]string

func (m mapFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if page, ok := m[url]; ok {
		return page, nil
	}
	return "", errors.New("connection refused")
}

func newPipeline(t *testing.T, pages mapFetcher) *Pipeline {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return New(cfg, logging.Discard()).WithFetcher(pages).WithTokenizer(keyword.FieldsTokenizer{})
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "notes.xlsx")
	ds := dataset.New([]string{"URL", "笔记标题", "粉丝数"}, [][]string{
		{"https://x/1", "beach trip", "10"},
		{"https://x/2", "beach food", "20"},
		{"https://x/3", "city walk", "30"},
	})
	require.NoError(t, ds.Save(path))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	out := filepath.Join(dir, "out")

	p := newPipeline(t, mapFetcher{
		"https://x/1": `<div id="detail-desc">one</div><a id="hash-tag">#海边</a><a id="hash-tag">#旅行</a>`,
		"https://x/3": `<div id="detail-desc">three</div><a id="hash-tag">#海边</a>`,
	})
	r := p.Run(context.Background(), input, out)
	require.False(t, r.Failed(), "%+v", r.Steps)
	require.Len(t, r.Steps, 3)
	require.Equal(t, filepath.Join(out, "notes_processed.xlsx"), r.Output)
	require.Contains(t, r.Steps[0].Summary, "2 fetched, 1 failed")

	ds, err := dataset.Load(r.Output, "笔记详情", "笔记话题")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	require.Equal(t, "https://x/2", ds.Value(1, "URL"))
	require.Equal(t, "", ds.Value(1, "笔记详情"))
	require.Equal(t, "#海边,#旅行", ds.Value(0, "笔记话题"))

	report, err := os.ReadFile(filepath.Join(out, HashtagReportName))
	require.NoError(t, err)
	lines := strings.Split(string(report), "\n")
	require.Equal(t, "1. #海边: 2次", lines[3])
	require.Equal(t, "2. #旅行: 1次", lines[4])

	table, err := dataset.Load(filepath.Join(out, KeywordTableName), keyword.ColumnKeyword)
	require.NoError(t, err)
	require.Equal(t, "beach", table.Value(0, keyword.ColumnKeyword))
	require.Equal(t, "beach trip\nbeach food", table.Value(0, keyword.ColumnTitles))
}

func TestScrapeSchemaErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	output := filepath.Join(dir, "processed.xlsx")

	p := newPipeline(t, mapFetcher{})
	p.cfg.Columns.URL = "链接"
	_, err := p.Scrape(context.Background(), input, output)

	var se *dataset.SchemaError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "链接", se.Column)
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestAnalysesFailEarlyOnMissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	p := newPipeline(t, mapFetcher{})

	report := filepath.Join(dir, "top_hashtags.txt")
	_, err := p.Hashtags(context.Background(), input, report, "", 0)
	var se *dataset.SchemaError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "话题标签", se.Column)
	_, statErr := os.Stat(report)
	require.True(t, os.IsNotExist(statErr))

	table := filepath.Join(dir, "kw.xlsx")
	_, err = p.Keywords(context.Background(), input, table, "标题")
	require.ErrorAs(t, err, &se)
	_, statErr = os.Stat(table)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunStopsAfterScrapeFailure(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.xlsx")

	r := newPipeline(t, mapFetcher{}).Run(context.Background(), missing, filepath.Join(dir, "out"))
	require.True(t, r.Failed())
	require.Len(t, r.Steps, 1)
}

func TestHashtagsTopKOverride(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tags.csv")
	ds := dataset.New([]string{"URL", "话题标签"}, [][]string{{"u", "#a,#b,#c"}})
	require.NoError(t, ds.Save(input))

	report := filepath.Join(dir, "r.txt")
	res, err := newPipeline(t, mapFetcher{}).Hashtags(context.Background(), input, report, "", 2)
	require.NoError(t, err)
	require.Equal(t, 3, res.Distinct)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	require.Contains(t, string(data), "(Top 2)")
	require.NotContains(t, string(data), "#c")
}

func TestDownloadDefaultsNextToInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.csv")
	ds := dataset.New([]string{"URL", "粉丝数", "互动量", "封面地址"}, [][]string{{"u", "5000", "10", ""}})
	require.NoError(t, ds.Save(input))

	res, err := newPipeline(t, mapFetcher{}).Download(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cover_images"), res.Dir)
	require.Zero(t, res.Matched)
	require.DirExists(t, res.Dir)
}

func TestCollectRequiresFeeds(t *testing.T) {
	_, err := newPipeline(t, mapFetcher{}).Collect(context.Background(), filepath.Join(t.TempDir(), "seed.xlsx"))
	require.Error(t, err)
}
