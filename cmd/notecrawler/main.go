package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/notecrawler/internal/config"
	"github.com/TobiSchelling/notecrawler/internal/logging"
	"github.com/TobiSchelling/notecrawler/internal/pipeline"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "notecrawler",
	Short:   "Scrape note pages and analyze hashtags and title keywords",
	Long:    "notecrawler fetches every note listed in a spreadsheet export, appends its body text and hashtags, and ranks hashtags and title keywords across the dataset.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			logger = logging.New("INFO", os.Stderr)
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "DEBUG"
		}
		logger = logging.New(level, os.Stderr)
		slog.SetDefault(logger)
		if path != "" {
			logger.Debug("loaded config", "path", path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(hashtagsCmd)
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(runCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("notecrawler", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/notecrawler/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set your session cookie, or export it as XHS_COOKIE.")
		return nil
	},
}

// --- scrape command ---

var scrapeCmd = &cobra.Command{
	Use:   "scrape INPUT OUTPUT",
	Short: "Fetch every note URL and append its detail text and hashtags",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Request.CookieValue() == "" {
			logger.Warn("no session cookie configured; note pages may come back without content", "env", cfg.Request.CookieEnv)
		}

		res, err := newPipeline().Scrape(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println("\nScrape complete:")
		fmt.Printf("  Rows: %d\n", len(res.Rows))
		fmt.Printf("  Fetched: %d\n", res.Fetched)
		fmt.Printf("  Failed: %d\n", res.Failed)
		fmt.Printf("  Without detail or hashtags: %d\n", res.Empty)
		fmt.Printf("  Saved to: %s\n", args[1])
		return nil
	},
}

// --- run command ---

var runCmd = &cobra.Command{
	Use:   "run INPUT [OUTPUT_DIR]",
	Short: "Run the full pipeline: scrape -> hashtags -> keywords",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := cfg.GetDataDir()
		if len(args) > 1 {
			outDir = args[1]
		}

		result := newPipeline().Run(cmd.Context(), args[0], outDir)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("pipeline finished with errors")
		}
		fmt.Printf("\nPipeline complete! Results in %s\n", outDir)
		return nil
	},
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(cfg, logger)
}
