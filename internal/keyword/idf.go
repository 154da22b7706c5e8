package keyword

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// IDF maps terms to inverse document frequency. Terms not in the table get
// the median weight, so unseen words are neither favored nor buried.
type IDF struct {
	weights map[string]float64
	median  float64
}

// NewIDF builds a table from explicit weights.
func NewIDF(weights map[string]float64) *IDF {
	idf := &IDF{weights: weights}
	idf.median = median(weights)
	return idf
}

// LoadIDF reads a "term weight" per line file, the format published with
// common Chinese keyword extractors. Blank lines are skipped.
func LoadIDF(path string) (*IDF, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening idf file: %w", err)
	}
	defer fh.Close()

	weights := make(map[string]float64)
	sc := bufio.NewScanner(fh)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("idf file %s line %d: want \"term weight\"", path, line)
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("idf file %s line %d: %w", path, line, err)
		}
		weights[fields[0]] = w
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading idf file: %w", err)
	}
	return NewIDF(weights), nil
}

// FitIDF derives weights from a corpus of tokenized documents using the
// smoothed form ln((1+N)/(1+df)) + 1, which stays positive for terms that
// appear in every document.
func FitIDF(docs [][]string) *IDF {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	weights := make(map[string]float64, len(df))
	for term, count := range df {
		weights[term] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return NewIDF(weights)
}

// Weight returns the idf of term.
func (idf *IDF) Weight(term string) float64 {
	if w, ok := idf.weights[term]; ok {
		return w
	}
	return idf.median
}

// Len returns the number of terms in the table.
func (idf *IDF) Len() int { return len(idf.weights) }

func median(weights map[string]float64) float64 {
	if len(weights) == 0 {
		return 1
	}
	vals := make([]float64, 0, len(weights))
	for _, w := range weights {
		vals = append(vals, w)
	}
	sort.Float64s(vals)
	return vals[len(vals)/2]
}
