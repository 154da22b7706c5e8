package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
	"github.com/TobiSchelling/notecrawler/internal/fetch"
	"github.com/TobiSchelling/notecrawler/internal/logging"
)

func coverDataset(rows ...[]string) *dataset.Dataset {
	return dataset.New([]string{"URL", "粉丝数", "互动量", "封面地址"}, rows)
}

func TestParseCount(t *testing.T) {
	cases := map[string]float64{
		"120":    120,
		"1,024":  1024,
		"1.2万":   12000,
		"3w":     30000,
		"2.5K":   2500,
		" 99.5 ": 99.5,
	}
	for in, want := range cases {
		got, ok := ParseCount(in)
		require.True(t, ok, in)
		require.InDelta(t, want, got, 1e-9, in)
	}
	_, ok := ParseCount("")
	require.False(t, ok)
	_, ok = ParseCount("many")
	require.False(t, ok)
}

func TestFilter(t *testing.T) {
	ds := coverDataset(
		[]string{"u0", "500", "200", "https://img/a.jpg"},
		[]string{"u1", "1000", "200", "https://img/b.jpg"},
		[]string{"u2", "10", "100", "https://img/c.jpg"},
		[]string{"u3", "10", "101", ""},
		[]string{"u4", "", "500", "https://img/d.jpg"},
		[]string{"u5", "999", "1.2万", "https://img/e"},
	)

	matched, got, err := Filter(ds, DefaultCriteria())
	require.NoError(t, err)
	require.Equal(t, 3, matched)
	require.Equal(t, []Candidate{{Index: 0, URL: "https://img/a.jpg"}, {Index: 5, URL: "https://img/e"}}, got)
}

func TestFilterMissingColumn(t *testing.T) {
	ds := dataset.New([]string{"URL", "粉丝数"}, nil)
	_, _, err := Filter(ds, DefaultCriteria())
	var se *dataset.SchemaError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "互动量", se.Column)
}

func TestFileName(t *testing.T) {
	require.Equal(t, "cover.webp", FileName("https://sns-img.example.com/a/cover.webp?x=1", 3))
	require.Equal(t, "image_3.jpg", FileName("https://sns-img.example.com/a/abcdef", 3))
	require.Equal(t, "image_7.jpg", FileName("https://sns-img.example.com/", 7))
	require.Equal(t, "image_1.jpg", FileName("::bad", 1))
}

type fakeGetter struct {
	fail map[string]bool
	got  []string
}

func (f *fakeGetter) Download(ctx context.Context, url, path string) error {
	f.got = append(f.got, path)
	if f.fail[url] {
		return errors.New("boom")
	}
	return nil
}

func TestRunCountsFailures(t *testing.T) {
	ds := coverDataset(
		[]string{"u0", "1", "500", "https://img/a.jpg"},
		[]string{"u1", "1", "500", "https://img/b"},
	)
	g := &fakeGetter{fail: map[string]bool{"https://img/a.jpg": true}}
	dir := t.TempDir()

	r, err := NewDownloader(g, DefaultCriteria(), logging.Discard()).Run(context.Background(), ds, dir)
	require.NoError(t, err)
	require.Equal(t, 2, r.Matched)
	require.Equal(t, 1, r.Downloaded)
	require.Equal(t, 1, r.Failed)
	require.Equal(t, []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "image_1.jpg")}, g.got)
}

func TestRunOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img:" + r.URL.Path))
	}))
	defer srv.Close()

	ds := coverDataset([]string{"u0", "1", "500", srv.URL + "/covers/x.png"})
	dir := filepath.Join(t.TempDir(), "cover_images")
	f := fetch.NewFetcher(fetch.Options{Logger: logging.Discard()})

	r, err := NewDownloader(f, DefaultCriteria(), logging.Discard()).Run(context.Background(), ds, dir)
	require.NoError(t, err)
	require.Equal(t, 1, r.Downloaded)

	data, err := os.ReadFile(filepath.Join(dir, "x.png"))
	require.NoError(t, err)
	require.Equal(t, "img:/covers/x.png", string(data))
}
