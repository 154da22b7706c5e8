package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// --- download command ---

var downloadDir string

var downloadCmd = &cobra.Command{
	Use:   "download INPUT",
	Short: "Download cover images of small accounts with high interaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newPipeline().Download(cmd.Context(), args[0], downloadDir)
		if err != nil {
			return err
		}

		fmt.Println("\nDownload complete:")
		fmt.Printf("  Matching rows: %d\n", res.Matched)
		fmt.Printf("  Downloaded: %d\n", res.Downloaded)
		fmt.Printf("  Failed: %d\n", res.Failed)
		fmt.Printf("  Saved in: %s\n", res.Dir)
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect OUTPUT",
	Short: "Build an input dataset from the configured RSS/Atom feeds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newPipeline().Collect(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Notes: %d\n", len(res.Entries))
		fmt.Printf("  Duplicates skipped: %d\n", res.Duplicates)
		fmt.Printf("  Failed feeds: %d\n", res.FailedFeed)

		if len(res.Sources) > 0 {
			fmt.Println("\nNotes by source:")
			// Sort sources by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range res.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		fmt.Printf("Saved to: %s\n", args[0])
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "", "Target directory (default: cover_images next to INPUT)")
}
