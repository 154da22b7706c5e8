package keyword

import (
	"fmt"
	"strings"

	"github.com/go-ego/gse"
)

// Tokenizer splits text into candidate terms.
type Tokenizer interface {
	Cut(text string) []string
}

// GseTokenizer segments Chinese (and mixed) text with gse's embedded
// dictionary and HMM for unknown words.
type GseTokenizer struct {
	seg gse.Segmenter
}

// NewGseTokenizer loads the embedded dictionary, plus any extra dictionary
// files given.
func NewGseTokenizer(dictFiles ...string) (*GseTokenizer, error) {
	t := &GseTokenizer{}
	if err := t.seg.LoadDictEmbed(); err != nil {
		return nil, fmt.Errorf("loading segmentation dictionary: %w", err)
	}
	for _, f := range dictFiles {
		if err := t.seg.LoadDict(f); err != nil {
			return nil, fmt.Errorf("loading dictionary %s: %w", f, err)
		}
	}
	return t, nil
}

func (t *GseTokenizer) Cut(text string) []string {
	return t.seg.Cut(text, true)
}

// FieldsTokenizer splits on whitespace. Suitable for pre-segmented or
// space-delimited text.
type FieldsTokenizer struct{}

func (FieldsTokenizer) Cut(text string) []string {
	return strings.Fields(text)
}
