package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/notecrawler/internal/hashtag"
	"github.com/TobiSchelling/notecrawler/internal/keyword"
)

const summaryRows = 10

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// --- hashtags command ---

var (
	hashtagColumn string
	hashtagTop    int
)

var hashtagsCmd = &cobra.Command{
	Use:   "hashtags INPUT REPORT",
	Short: "Rank hashtags by frequency and write the top-K report (.txt or .html)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newPipeline().Hashtags(cmd.Context(), args[0], args[1], hashtagColumn, hashtagTop)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d rows, %d distinct hashtags\n", res.Rows, res.Distinct)
		t := newTable()
		t.AppendHeader(table.Row{"#", "Hashtag", "Count"})
		for i, c := range res.Top(summaryRows) {
			t.AppendRow(table.Row{i + 1, "#" + c.Tag, c.Count})
		}
		t.Render()
		fmt.Printf("Report saved to: %s\n", args[1])
		return nil
	},
}

// --- keywords command ---

var keywordColumn string

var keywordsCmd = &cobra.Command{
	Use:   "keywords INPUT TABLE",
	Short: "Extract title keywords and write the keyword table (.xlsx or .csv)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newPipeline().Keywords(cmd.Context(), args[0], args[1], keywordColumn)
		if err != nil {
			return err
		}

		fmt.Printf("Processed %d titles, %d keywords\n", res.Titles, len(res.Entries))
		t := newTable()
		t.AppendHeader(table.Row{"#", "Keyword", "Count", "First title"})
		for i, e := range keyword.Top(res.Entries, summaryRows) {
			first := ""
			if len(e.Titles) > 0 {
				first = truncate(e.Titles[0], 40)
			}
			t.AppendRow(table.Row{i + 1, e.Keyword, e.Count, first})
		}
		t.Render()
		fmt.Printf("Table saved to: %s\n", args[1])
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func init() {
	hashtagsCmd.Flags().StringVar(&hashtagColumn, "column", "", "Hashtag column (default from config: "+hashtag.DefaultColumn+")")
	hashtagsCmd.Flags().IntVar(&hashtagTop, "top", 0, "Number of ranked entries in the report (default from config)")
	keywordsCmd.Flags().StringVar(&keywordColumn, "column", "", "Title column (default from config: "+keyword.DefaultColumn+")")
}
