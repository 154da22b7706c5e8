package keyword

import (
	"strconv"
	"strings"

	"github.com/TobiSchelling/notecrawler/internal/dataset"
)

// Table column names.
const (
	ColumnKeyword = "关键词"
	ColumnCount   = "出现次数"
	ColumnTitles  = "相关标题"
)

// Table converts entries to a dataset with one row per keyword, titles
// newline-joined within their cell.
func Table(entries []Entry) *dataset.Dataset {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Keyword, strconv.Itoa(e.Count), strings.Join(e.Titles, "\n")}
	}
	return dataset.New([]string{ColumnKeyword, ColumnCount, ColumnTitles}, rows)
}

// Save writes the keyword table to path (.xlsx or .csv).
func Save(path string, entries []Entry) error {
	return Table(entries).Save(path)
}
