package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const notePage = `<!doctype html>
<html><body>
  <div class="note">
    <div id="detail-desc">
      周末去了趟海边 <span>风很大</span>
    </div>
    <a id="hash-tag" href="/t/1"> #旅行 </a>
    <a id="hash-tag" href="/t/2">#海边</a>
    <a id="hash-tag" href="/t/3">   </a>
    <a id="hash-tag" href="/t/4">#周末去哪儿</a>
  </div>
</body></html>`

func TestExtractDetailAndHashtags(t *testing.T) {
	note, err := New().Extract(notePage)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(note.Detail, "周末去了趟海边"))
	require.Contains(t, note.Detail, "风很大")
	require.Equal(t, []string{"#旅行", "#海边", "#周末去哪儿"}, note.Hashtags)
	require.Equal(t, "#旅行,#海边,#周末去哪儿", note.HashtagCell())
}

func TestExtractMissingElements(t *testing.T) {
	note, err := New().Extract(`<html><body><p>nothing here</p></body></html>`)
	require.NoError(t, err)
	require.Equal(t, "", note.Detail)
	require.NotNil(t, note.Hashtags)
	require.Empty(t, note.Hashtags)
	require.Equal(t, "", note.HashtagCell())
}

func TestExtractMalformedMarkup(t *testing.T) {
	note, err := New().Extract(`<div id="detail-desc">unclosed <b>bold <a id="hash-tag">#tag`)
	require.NoError(t, err)
	require.Contains(t, note.Detail, "unclosed")
	require.Equal(t, []string{"#tag"}, note.Hashtags)
}

func TestExtractUsesFirstDetailOnly(t *testing.T) {
	note, err := New().Extract(`<p id="detail-desc">first</p><p id="detail-desc">second</p>`)
	require.NoError(t, err)
	require.Equal(t, "first", note.Detail)
}

func TestExtractCustomSelectors(t *testing.T) {
	e := &Extractor{DetailSelector: ".desc", HashtagSelector: "a.tag"}
	note, err := e.Extract(`<p class="desc">body</p><a class="tag">x</a><a class="tag">y</a>`)
	require.NoError(t, err)
	require.Equal(t, "body", note.Detail)
	require.Equal(t, []string{"x", "y"}, note.Hashtags)
}

func TestExtractEmptySelectorsUseDefaults(t *testing.T) {
	note, err := (&Extractor{}).Extract(notePage)
	require.NoError(t, err)
	require.Len(t, note.Hashtags, 3)
}

func TestReadabilityFallbackNeedsPageURL(t *testing.T) {
	e := New()
	e.ReadabilityFallback = true
	note, err := e.Extract(`<html><body><article><p>text</p></article></body></html>`)
	require.NoError(t, err)
	require.Equal(t, "", note.Detail)
}

func TestReadabilityFallback(t *testing.T) {
	page := `<!doctype html><html><head><title>Note</title></head><body><article>
<p>这是一篇很长的笔记正文，用来测试正文提取。周末我们去了海边，天气很好，人也不多，适合拍照和散步。</p>
<p>第二段继续描述行程安排，包括交通、住宿和美食推荐，希望对大家有帮助。</p>
</article></body></html>`

	e := New()
	e.ReadabilityFallback = true
	note, err := e.ExtractPage(page, "https://www.example.com/explore/1")
	require.NoError(t, err)
	require.Contains(t, note.Detail, "海边")
}
