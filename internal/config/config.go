package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Request  Request  `yaml:"request"`
	Extract  Extract  `yaml:"extract"`
	Columns  Columns  `yaml:"columns"`
	Report   Report   `yaml:"report"`
	Download Download `yaml:"download"`
	Collect  Collect  `yaml:"collect"`
	Output   Output   `yaml:"output"`
	Logging  Logging  `yaml:"logging"`
}

// Request describes the header set and pacing used for note page fetches.
type Request struct {
	Cookie    string            `yaml:"cookie"`
	CookieEnv string            `yaml:"cookie_env"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Timeout   Duration          `yaml:"timeout"`
	Delay     Duration          `yaml:"delay"`
}

type Extract struct {
	DetailSelector      string `yaml:"detail_selector"`
	HashtagSelector     string `yaml:"hashtag_selector"`
	ReadabilityFallback bool   `yaml:"readability_fallback"`
}

type Columns struct {
	URL          string `yaml:"url"`
	DetailOutput string `yaml:"detail_output"`
	TagsOutput   string `yaml:"tags_output"`
	Hashtags     string `yaml:"hashtags"`
	Title        string `yaml:"title"`
}

type Report struct {
	TopK             int      `yaml:"top_k"`
	KeywordsPerTitle int      `yaml:"keywords_per_title"`
	IDFFile          string   `yaml:"idf_file"`
	StopWords        []string `yaml:"stop_words"`
}

type Download struct {
	FollowersColumn   string   `yaml:"followers_column"`
	InteractionColumn string   `yaml:"interaction_column"`
	CoverColumn       string   `yaml:"cover_column"`
	MaxFollowers      float64  `yaml:"max_followers"`
	MinInteractions   float64  `yaml:"min_interactions"`
	Dir               string   `yaml:"dir"`
	Timeout           Duration `yaml:"timeout"`
	Delay             Duration `yaml:"delay"`
}

type Collect struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// Duration is a time.Duration that unmarshals from strings like "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// ConfigDir returns the XDG config directory for notecrawler.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "notecrawler")
}

// DataDir returns the XDG data directory for notecrawler.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "notecrawler")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/notecrawler/config.yaml > ./config.yaml
//
// Unlike a missing explicit path, finding no config at all is not an error:
// an empty path is returned and Load falls back to the built-in defaults.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Request: Request{
			CookieEnv: "XHS_COOKIE",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timeout:   Duration(15 * time.Second),
			Delay:     Duration(2 * time.Second),
		},
		Extract: Extract{
			DetailSelector:  "#detail-desc",
			HashtagSelector: "#hash-tag",
		},
		Columns: Columns{
			DetailOutput: "笔记详情",
			TagsOutput:   "笔记话题",
			Hashtags:     "话题标签",
			Title:        "笔记标题",
		},
		Report: Report{
			TopK:             50,
			KeywordsPerTitle: 3,
		},
		Download: Download{
			FollowersColumn:   "粉丝数",
			InteractionColumn: "互动量",
			CoverColumn:       "封面地址",
			MaxFollowers:      1000,
			MinInteractions:   100,
			Dir:               "cover_images",
			Timeout:           Duration(10 * time.Second),
			Delay:             Duration(time.Second),
		},
		Logging: Logging{Level: "INFO"},
	}

	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// CookieValue returns the session cookie, preferring the literal value over
// the environment variable named by CookieEnv.
func (r Request) CookieValue() string {
	if r.Cookie != "" {
		return r.Cookie
	}
	if r.CookieEnv != "" {
		return os.Getenv(r.CookieEnv)
	}
	return ""
}

// HeaderSet returns the full header map sent with every note request.
func (r Request) HeaderSet() map[string]string {
	h := make(map[string]string, len(r.Headers)+2)
	for k, v := range r.Headers {
		h[k] = v
	}
	if r.UserAgent != "" {
		h["User-Agent"] = r.UserAgent
	}
	if c := r.CookieValue(); c != "" {
		h["Cookie"] = c
	}
	return h
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
