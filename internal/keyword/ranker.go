package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultStopWords are frequent function words that never make useful
// keywords. Single-rune terms are dropped separately.
var DefaultStopWords = []string{
	"一个", "一些", "一下", "一种", "我们", "你们", "他们", "她们", "自己", "大家",
	"这个", "那个", "这些", "那些", "这样", "那样", "这么", "那么", "什么", "怎么",
	"为什么", "如何", "还是", "就是", "不是", "没有", "可以", "可能", "真的", "已经",
	"但是", "因为", "所以", "如果", "而且", "或者", "然后", "还有", "以及", "非常",
	"the", "and", "for", "with", "you", "your", "this", "that", "are", "from",
}

// Keyword is a ranked term of one document.
type Keyword struct {
	Term   string
	Weight float64
}

// Ranker picks the most significant terms of a short text by tf-idf.
type Ranker struct {
	tokenizer Tokenizer
	idf       *IDF
	stop      map[string]struct{}
}

// NewRanker creates a ranker. With a nil idf every term weighs the same and
// ranking falls back to term frequency.
func NewRanker(t Tokenizer, idf *IDF, stopWords []string) *Ranker {
	r := &Ranker{tokenizer: t, idf: idf, stop: make(map[string]struct{}, len(stopWords))}
	for _, w := range stopWords {
		r.stop[strings.ToLower(w)] = struct{}{}
	}
	return r
}

// HasIDF reports whether an idf table is configured.
func (r *Ranker) HasIDF() bool { return r.idf != nil }

// WithIDF returns a copy of r using idf.
func (r *Ranker) WithIDF(idf *IDF) *Ranker {
	c := *r
	c.idf = idf
	return &c
}

// Terms tokenizes text and keeps only candidate keywords, in order of
// appearance. Case is preserved; stop words match case-insensitively.
func (r *Ranker) Terms(text string) []string {
	var out []string
	for _, tok := range r.tokenizer.Cut(text) {
		term := strings.TrimSpace(tok)
		if !r.candidate(term) {
			continue
		}
		out = append(out, term)
	}
	return out
}

func (r *Ranker) candidate(term string) bool {
	if utf8.RuneCountInString(term) < 2 {
		return false
	}
	if _, stop := r.stop[strings.ToLower(term)]; stop {
		return false
	}
	for _, c := range term {
		if unicode.IsLetter(c) {
			return true
		}
	}
	return false
}

// Extract returns at most topN keywords of text, highest weight first.
// Equal weights keep the order in which the terms first appear.
func (r *Ranker) Extract(text string, topN int) []Keyword {
	terms := r.Terms(text)
	if len(terms) == 0 || topN <= 0 {
		return nil
	}

	freq := make(map[string]int, len(terms))
	var order []string
	for _, t := range terms {
		if freq[t] == 0 {
			order = append(order, t)
		}
		freq[t]++
	}

	total := float64(len(terms))
	kws := make([]Keyword, len(order))
	for i, t := range order {
		w := float64(freq[t]) / total
		if r.idf != nil {
			w *= r.idf.Weight(t)
		}
		kws[i] = Keyword{Term: t, Weight: w}
	}
	sort.SliceStable(kws, func(i, j int) bool { return kws[i].Weight > kws[j].Weight })

	if len(kws) > topN {
		kws = kws[:topN]
	}
	return kws
}
