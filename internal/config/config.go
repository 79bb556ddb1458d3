package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported data providers.
const (
	ProviderYahoo     = "yahoo"
	ProviderFinanceGo = "finance-go"
	ProviderREST      = "rest"
	ProviderMock      = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider string        `yaml:"provider"`
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
		Retries  *int          `yaml:"retries"`
	} `yaml:"data_source"`
	Analysis struct {
		Symbol      string `yaml:"symbol"`
		Start       string `yaml:"start"`
		End         string `yaml:"end"`
		Window      int    `yaml:"window"`
		PreviewRows int    `yaml:"preview_rows"`
	} `yaml:"analysis"`
	Plot struct {
		Enabled   *bool   `yaml:"enabled"`
		Show      *bool   `yaml:"show"`
		OutputDir string  `yaml:"output_dir"`
		WidthIn   float64 `yaml:"width_in"`
		HeightIn  float64 `yaml:"height_in"`
	} `yaml:"plot"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("FETCH_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse FETCH_RETRIES: %w", err)
		}
		cfg.DataSource.Retries = &n
	}
	if v := os.Getenv("TICKER"); v != "" {
		cfg.Analysis.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.Retries == nil {
		one := 1
		c.DataSource.Retries = &one
	}
	if c.Analysis.Symbol == "" {
		c.Analysis.Symbol = "AAPL"
	}
	if c.Analysis.Start == "" {
		c.Analysis.Start = "2022-01-01"
	}
	if c.Analysis.End == "" {
		c.Analysis.End = "2023-01-01"
	}
	if c.Analysis.Window == 0 {
		c.Analysis.Window = 50
	}
	if c.Analysis.PreviewRows == 0 {
		c.Analysis.PreviewRows = 5
	}
	if c.Plot.Enabled == nil {
		t := true
		c.Plot.Enabled = &t
	}
	if c.Plot.Show == nil {
		t := true
		c.Plot.Show = &t
	}
	if c.Plot.OutputDir == "" {
		c.Plot.OutputDir = "charts"
	}
	if c.Plot.WidthIn == 0 {
		c.Plot.WidthIn = 12
	}
	if c.Plot.HeightIn == 0 {
		c.Plot.HeightIn = 6
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DateRange parses the analysis start and end dates (YYYY-MM-DD, UTC).
func (c *Config) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, c.Analysis.Start)
	if err != nil {
		return start, end, fmt.Errorf("analysis.start: %w", err)
	}
	end, err = time.Parse(time.DateOnly, c.Analysis.End)
	if err != nil {
		return start, end, fmt.Errorf("analysis.end: %w", err)
	}
	return start, end, nil
}

// PlotEnabled reports whether a chart should be rendered.
func (c *Config) PlotEnabled() bool { return c.Plot.Enabled == nil || *c.Plot.Enabled }

// PlotShow reports whether the rendered chart should be opened in a viewer.
func (c *Config) PlotShow() bool { return c.Plot.Show == nil || *c.Plot.Show }

// FetchRetries returns the number of extra fetch attempts.
func (c *Config) FetchRetries() int {
	if c.DataSource.Retries == nil {
		return 1
	}
	return *c.DataSource.Retries
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderFinanceGo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.FetchRetries() < 0 || c.FetchRetries() > 5 {
		return fmt.Errorf("data_source.retries must be between 0 and 5")
	}
	if strings.TrimSpace(c.Analysis.Symbol) == "" {
		return fmt.Errorf("analysis.symbol is required")
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("analysis.end must be after analysis.start")
	}
	if c.Analysis.Window <= 0 {
		return fmt.Errorf("analysis.window must be positive")
	}
	if c.Analysis.PreviewRows < 0 {
		return fmt.Errorf("analysis.preview_rows must not be negative")
	}
	if c.Plot.WidthIn <= 0 || c.Plot.HeightIn <= 0 {
		return fmt.Errorf("plot.width_in and plot.height_in must be positive")
	}
	return nil
}
