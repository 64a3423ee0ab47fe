package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ModeHTTP    = "http"
	ModeConsole = "console"
)

type Config struct {
	AppConfig     *AppConfig
	AIConfig      *AIConfig
	BrowserConfig *BrowserConfig
	SearchConfig  *SearchConfig
	HTTPConfig    *HTTPConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
	Mode     string `envconfig:"APP_MODE" default:"http"`
}

type AIConfig struct {
	APIKey       string        `envconfig:"OPENAI_API_KEY" required:"true"`
	BaseURL      string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	PlanModel    string        `envconfig:"AI_PLAN_MODEL" default:"gpt-4-turbo"`
	SummaryModel string        `envconfig:"AI_SUMMARY_MODEL" default:"gpt-3.5-turbo"`
	Timeout      time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
}

type BrowserConfig struct {
	Headless          bool `envconfig:"BROWSER_HEADLESS" default:"false"`
	LaunchTimeout     int  `envconfig:"BROWSER_LAUNCH_TIMEOUT" default:"30000"`
	NavigationTimeout int  `envconfig:"BROWSER_NAVIGATION_TIMEOUT" default:"15000"`
	MaxContexts       int  `envconfig:"BROWSER_MAX_CONTEXTS" default:"8"`
	SkipInstall       bool `envconfig:"BROWSER_SKIP_INSTALL" default:"false"`
}

type SearchConfig struct {
	Trigger     string `envconfig:"SEARCH_TRIGGER" default:"google"`
	PrimaryURL  string `envconfig:"SEARCH_PRIMARY_URL" default:"https://www.google.com"`
	FallbackURL string `envconfig:"SEARCH_FALLBACK_URL" default:"https://duckduckgo.com/"`
}

type HTTPConfig struct {
	Addr      string  `envconfig:"HTTP_ADDR" default:":3000"`
	RateLimit float64 `envconfig:"HTTP_RATE_LIMIT" default:"2"`
	RateBurst int     `envconfig:"HTTP_RATE_BURST" default:"4"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	if conf.AppConfig.Mode != ModeHTTP && conf.AppConfig.Mode != ModeConsole {
		return nil, fmt.Errorf("unsupported APP_MODE %q", conf.AppConfig.Mode)
	}

	if conf.BrowserConfig.MaxContexts < 1 {
		conf.BrowserConfig.MaxContexts = 1
	}

	return &conf, nil
}

func (c *BrowserConfig) NavigationTimeoutDuration() time.Duration {
	return time.Duration(c.NavigationTimeout) * time.Millisecond
}
