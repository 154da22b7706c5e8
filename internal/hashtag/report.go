package hashtag

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// Title returns the report header for a top-k report.
func Title(k int) string {
	return fmt.Sprintf("话题标签统计结果 (Top %d):", k)
}

// Line formats one ranked entry.
func Line(rank int, c Count) string {
	return fmt.Sprintf("%d. #%s: %d次", rank, c.Tag, c.Count)
}

// WriteReport writes the plain-text top-k report: header, a separator of 50
// '=' characters, a blank line, then one ranked line per entry.
func WriteReport(w io.Writer, counts []Count, k int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Title(k))
	fmt.Fprintln(bw, strings.Repeat("=", 50))
	fmt.Fprintln(bw)
	for i, c := range Top(counts, k) {
		fmt.Fprintln(bw, Line(i+1, c))
	}
	return bw.Flush()
}

// WriteHTML renders the same report as an HTML fragment.
func WriteHTML(w io.Writer, counts []Count, k int) error {
	var src bytes.Buffer
	fmt.Fprintf(&src, "# %s\n\n", escapeMarkdown(strings.TrimSuffix(Title(k), ":")))
	for i, c := range Top(counts, k) {
		fmt.Fprintf(&src, "%d. %s\n", i+1, escapeMarkdown(fmt.Sprintf("#%s: %d次", c.Tag, c.Count)))
	}
	return md.Convert(src.Bytes(), w)
}

// SaveReport writes the report to path. Paths ending in .html or .htm get
// the HTML rendering, anything else the plain-text one.
func SaveReport(path string, counts []Count, k int) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		err = WriteHTML(&buf, counts, k)
	default:
		err = WriteReport(&buf, counts, k)
	}
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
