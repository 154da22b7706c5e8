package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/notecrawler/internal/logging"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>creator notes</title>
  <item>
    <title>海边日记</title>
    <link>https://www.example.com/explore/1</link>
    <category>旅行</category>
    <category>海边</category>
    <pubDate>Mon, 12 Oct 2026 08:00:00 GMT</pubDate>
  </item>
  <item>
    <title>美食探店</title>
    <link>https://www.example.com/explore/2</link>
  </item>
  <item>
    <title>duplicate</title>
    <link>https://www.example.com/explore/1</link>
  </item>
  <item>
    <title>no link</title>
  </item>
</channel>
</rss>`

func TestCollect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	c := NewCollector([]FeedConfig{
		{URL: srv.URL + "/feed", Name: "creator"},
		{URL: srv.URL + "/missing"},
	}, logging.Discard())
	r := c.Collect(context.Background())

	require.Len(t, r.Entries, 2)
	require.Equal(t, 1, r.Duplicates)
	require.Equal(t, 1, r.FailedFeed)
	require.Equal(t, 2, r.Sources["creator"])

	first := r.Entries[0]
	require.Equal(t, "https://www.example.com/explore/1", first.URL)
	require.Equal(t, "海边日记", first.Title)
	require.Equal(t, []string{"旅行", "海边"}, first.Hashtags)
	require.Equal(t, "2026-10-12", first.PublishedDate)

	ds := ToDataset(r.Entries)
	require.Equal(t, ColumnURL, ds.Header()[0])
	require.Equal(t, 2, ds.Len())
	require.Equal(t, "旅行,海边", ds.Value(0, ColumnHashtags))
	require.Equal(t, "", ds.Value(1, ColumnPublished))
}

func TestExtractSourceName(t *testing.T) {
	require.Equal(t, "Rsshub", extractSourceName("https://rsshub.app/xiaohongshu/user/1/notes"))
	require.Equal(t, "Example", extractSourceName("https://www.example.com/feed"))
	require.Equal(t, "not a url", extractSourceName("not a url"))
	require.Equal(t, "https://rss./feed", extractSourceName("https://rss./feed"))
	require.Equal(t, "https://www./feed", extractSourceName("https://www./feed"))
}
