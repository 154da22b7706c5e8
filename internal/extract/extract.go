// Package extract pulls the note body and hashtag list out of a note page.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	DefaultDetailSelector  = "#detail-desc"
	DefaultHashtagSelector = "#hash-tag"
)

// Note holds the fields extracted from one page. Both may be empty.
type Note struct {
	Detail   string
	Hashtags []string
}

// HashtagCell joins the hashtags the way they are stored in the dataset.
func (n Note) HashtagCell() string {
	return strings.Join(n.Hashtags, ",")
}

// Extractor locates the detail block and hashtag nodes by CSS selector.
// Missing elements produce empty values, never errors.
type Extractor struct {
	DetailSelector  string
	HashtagSelector string

	// ReadabilityFallback fills Detail from the page's main readable text
	// when DetailSelector matches nothing.
	ReadabilityFallback bool
}

// New returns an extractor using the default note page selectors.
func New() *Extractor {
	return &Extractor{
		DetailSelector:  DefaultDetailSelector,
		HashtagSelector: DefaultHashtagSelector,
	}
}

// Extract parses markup and returns the note fields.
func (e *Extractor) Extract(markup string) (Note, error) {
	return e.ExtractPage(markup, "")
}

// ExtractPage is Extract with the page URL available to the readability
// fallback for resolving relative links.
func (e *Extractor) ExtractPage(markup, pageURL string) (Note, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Note{}, fmt.Errorf("parsing markup: %w", err)
	}

	var note Note
	detail := doc.Find(e.detailSelector()).First()
	if detail.Length() > 0 {
		note.Detail = strings.TrimSpace(detail.Text())
	} else if e.ReadabilityFallback {
		note.Detail = readableText(markup, pageURL)
	}

	doc.Find(e.hashtagSelector()).Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			note.Hashtags = append(note.Hashtags, tag)
		}
	})
	if note.Hashtags == nil {
		note.Hashtags = []string{}
	}
	return note, nil
}

func (e *Extractor) detailSelector() string {
	if e.DetailSelector == "" {
		return DefaultDetailSelector
	}
	return e.DetailSelector
}

func (e *Extractor) hashtagSelector() string {
	if e.HashtagSelector == "" {
		return DefaultHashtagSelector
	}
	return e.HashtagSelector
}

func readableText(markup, pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(markup), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
