package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration tree, decoded from TOML
// with defaults applied first, then file values, then SCOUT_* environment
// overrides, then CLI flags.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Queue     QueueConfig     `toml:"queue"`
	Fetch     FetchConfig     `toml:"fetch"`
	Robots    RobotsConfig    `toml:"robots"`
	Freshness FreshnessConfig `toml:"freshness"`
	LLM       LLMConfig       `toml:"llm"`
	WAF       WAFConfig       `toml:"waf"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

type StorageConfig struct {
	Path string `toml:"path" validate:"required"`
}

type QueueConfig struct {
	Name              string `toml:"name"`
	Concurrency       int    `toml:"concurrency" validate:"min=1"`
	PollInterval      string `toml:"poll_interval"`
	VisibilityTimeout string `toml:"visibility_timeout"`
	MaxReceive        int    `toml:"max_receive" validate:"min=1"`
	JobTimeout        string `toml:"job_timeout"`
}

type FetchConfig struct {
	Timeout string `toml:"timeout"`

	// Strategy names in declared order. Known strategies: browser, proxy.
	Strategies []string `toml:"strategies"`

	// Minimum interval between requests to the same origin.
	PerOriginInterval string `toml:"per_origin_interval"`

	ProxyAPIURL string `toml:"proxy_api_url"`
	ProxyAPIKey string `toml:"proxy_api_key"`

	Browser BrowserConfig `toml:"browser"`
}

type BrowserConfig struct {
	MaxInstances int    `toml:"max_instances" validate:"min=1"`
	UserAgent    string `toml:"user_agent"`
	Headless     bool   `toml:"headless"`
	NoSandbox    bool   `toml:"no_sandbox"`
	WaitTime     string `toml:"wait_time"`
}

type RobotsConfig struct {
	// User agent evaluated for url_allowed and Crawl-delay.
	UserAgent string `toml:"user_agent" validate:"required"`
}

type FreshnessConfig struct {
	PublisherTTL string `toml:"publisher_ttl"`
	ArticleTTL   string `toml:"article_ttl"`
}

type LLMConfig struct {
	DefaultProvider string       `toml:"default_provider"`
	Timeout         string       `toml:"timeout"`
	Claude          ClaudeConfig `toml:"claude"`
	Gemini          GeminiConfig `toml:"gemini"`
}

type ClaudeConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type WAFConfig struct {
	Enabled bool   `toml:"enabled"`
	Binary  string `toml:"binary"`
	Timeout string `toml:"timeout"`
}

type SchedulerConfig struct {
	// Cron expression for the stale-publisher recheck sweep. Empty
	// disables the sweeper.
	RecheckSchedule string `toml:"recheck_schedule"`
	BatchSize       int    `toml:"batch_size"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`
	Output []string `toml:"output"`
}

// NewDefaultConfig returns the baseline configuration before any file,
// environment, or flag overrides.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8085,
		},
		Storage: StorageConfig{
			Path: "./data/scout",
		},
		Queue: QueueConfig{
			Name:              "pipeline",
			Concurrency:       2,
			PollInterval:      "500ms",
			VisibilityTimeout: "15m",
			MaxReceive:        3,
			JobTimeout:        "600s",
		},
		Fetch: FetchConfig{
			Timeout:           "30s",
			Strategies:        []string{"browser", "proxy"},
			PerOriginInterval: "1s",
			ProxyAPIURL:       "https://api.zyte.com/v1/extract",
			Browser: BrowserConfig{
				MaxInstances: 2,
				UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
				Headless:     true,
				NoSandbox:    true,
				WaitTime:     "2s",
			},
		},
		Robots: RobotsConfig{
			UserAgent: "itsascout",
		},
		Freshness: FreshnessConfig{
			PublisherTTL: "24h",
			ArticleTTL:   "24h",
		},
		LLM: LLMConfig{
			DefaultProvider: "claude",
			Timeout:         "30s",
			Claude: ClaudeConfig{
				Model: "claude-sonnet-4-5",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
		},
		WAF: WAFConfig{
			Enabled: true,
			Binary:  "wafw00f",
			Timeout: "60s",
		},
		Scheduler: SchedulerConfig{
			RecheckSchedule: "",
			BatchSize:       10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration in priority order: defaults, then
// each file (later files override earlier ones), then environment.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides maps SCOUT_* environment variables onto the config.
// Provider API keys also honor the vendors' conventional variables.
func applyEnvOverrides(config *Config) {
	setString := func(key string, target *string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	setInt := func(key string, target *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setString("SCOUT_SERVER_HOST", &config.Server.Host)
	setInt("SCOUT_SERVER_PORT", &config.Server.Port)
	setString("SCOUT_STORAGE_PATH", &config.Storage.Path)
	setInt("SCOUT_QUEUE_CONCURRENCY", &config.Queue.Concurrency)
	setString("SCOUT_QUEUE_JOB_TIMEOUT", &config.Queue.JobTimeout)
	setString("SCOUT_FETCH_TIMEOUT", &config.Fetch.Timeout)
	setString("SCOUT_PROXY_API_URL", &config.Fetch.ProxyAPIURL)
	setString("SCOUT_PROXY_API_KEY", &config.Fetch.ProxyAPIKey)
	setString("SCOUT_ROBOTS_USER_AGENT", &config.Robots.UserAgent)
	setString("SCOUT_PUBLISHER_FRESHNESS_TTL", &config.Freshness.PublisherTTL)
	setString("SCOUT_ARTICLE_FRESHNESS_TTL", &config.Freshness.ArticleTTL)
	setString("SCOUT_LLM_PROVIDER", &config.LLM.DefaultProvider)
	setString("SCOUT_WAF_BINARY", &config.WAF.Binary)
	setString("SCOUT_LOG_LEVEL", &config.Logging.Level)

	setString("SCOUT_CLAUDE_API_KEY", &config.LLM.Claude.APIKey)
	setString("ANTHROPIC_API_KEY", &config.LLM.Claude.APIKey)
	setString("SCOUT_GEMINI_API_KEY", &config.LLM.Gemini.APIKey)
	setString("GEMINI_API_KEY", &config.LLM.Gemini.APIKey)

	if v := os.Getenv("SCOUT_FETCH_STRATEGIES"); v != "" {
		parts := strings.Split(v, ",")
		strategies := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				strategies = append(strategies, s)
			}
		}
		if len(strategies) > 0 {
			config.Fetch.Strategies = strategies
		}
	}
}

// ParseDuration parses a duration string, falling back when the value is
// empty or malformed.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Duration accessors with their documented defaults.

func (c *QueueConfig) PollIntervalDuration() time.Duration {
	return ParseDuration(c.PollInterval, 500*time.Millisecond)
}

func (c *QueueConfig) VisibilityTimeoutDuration() time.Duration {
	return ParseDuration(c.VisibilityTimeout, 15*time.Minute)
}

func (c *QueueConfig) JobTimeoutDuration() time.Duration {
	return ParseDuration(c.JobTimeout, 600*time.Second)
}

func (c *FetchConfig) TimeoutDuration() time.Duration {
	return ParseDuration(c.Timeout, 30*time.Second)
}

func (c *FetchConfig) PerOriginIntervalDuration() time.Duration {
	return ParseDuration(c.PerOriginInterval, time.Second)
}

func (c *BrowserConfig) WaitTimeDuration() time.Duration {
	return ParseDuration(c.WaitTime, 2*time.Second)
}

func (c *FreshnessConfig) PublisherTTLDuration() time.Duration {
	return ParseDuration(c.PublisherTTL, 24*time.Hour)
}

func (c *FreshnessConfig) ArticleTTLDuration() time.Duration {
	return ParseDuration(c.ArticleTTL, 24*time.Hour)
}

func (c *LLMConfig) TimeoutDuration() time.Duration {
	return ParseDuration(c.Timeout, 30*time.Second)
}

func (c *WAFConfig) TimeoutDuration() time.Duration {
	return ParseDuration(c.Timeout, 60*time.Second)
}
