package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sizing"
	"github.com/rustyeddy/backtester/strategies"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of start and end dates in config files.
const DateLayout = "2006-01-02"

// Config represents a complete backtest configuration
type Config struct {
	Backtest BacktestConfig    `json:"backtest" yaml:"backtest"`
	Strategy strategies.Config `json:"strategy" yaml:"strategy"`
	Sizer    sizing.Config     `json:"sizer" yaml:"sizer"`
	Data     DataConfig        `json:"data" yaml:"data"`
	Journal  JournalConfig     `json:"journal" yaml:"journal"`
	Log      LogConfig         `json:"log" yaml:"log"`
}

// BacktestConfig selects what is traded and with how much capital
type BacktestConfig struct {
	Symbol      string  `json:"symbol" yaml:"symbol"`
	Start       string  `json:"start" yaml:"start"` // 2006-01-02, inclusive
	End         string  `json:"end" yaml:"end"`     // 2006-01-02, exclusive
	Timeframe   string  `json:"timeframe" yaml:"timeframe"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
	Commission  float64 `json:"commission" yaml:"commission"`
}

// DataConfig selects the bar source
type DataConfig struct {
	Source     string `json:"source" yaml:"source"` // "csv", "parquet" or "alpaca"
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"` // single csv file
	Retries    int    `json:"retries,omitempty" yaml:"retries,omitempty"`
	RetryDelay string `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"` // e.g. "1s"

	Alpaca AlpacaConfig `json:"alpaca,omitempty" yaml:"alpaca,omitempty"`
}

// AlpacaConfig holds market-data credentials. Empty keys fall back to
// APCA_API_KEY_ID and APCA_API_SECRET_KEY.
type AlpacaConfig struct {
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	DataURL   string `json:"data_url,omitempty" yaml:"data_url,omitempty"`
	Feed      string `json:"feed,omitempty" yaml:"feed,omitempty"`
}

// JournalConfig contains journaling parameters. Both are optional.
type JournalConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CSVDir string `json:"csv_dir,omitempty" yaml:"csv_dir,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON
// otherwise
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backtest.Symbol == "" {
		return fmt.Errorf("backtest.symbol is required")
	}
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive")
	}
	if c.Backtest.Commission < 0 || c.Backtest.Commission >= 1 {
		return fmt.Errorf("backtest.commission must be between 0 and 1")
	}
	if _, err := market.ParseTimeframe(c.Backtest.Timeframe); err != nil {
		return fmt.Errorf("backtest.timeframe: %w", err)
	}
	start, end, err := c.Backtest.Range()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("backtest.start must be before backtest.end")
	}

	if _, err := strategies.New(c.Strategy, market.EmptySeries(c.Backtest.Symbol, market.Daily)); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if _, err := sizing.New(c.Sizer); err != nil {
		return fmt.Errorf("sizer: %w", err)
	}

	switch c.Data.Source {
	case "csv":
		if c.Data.Dir == "" && c.Data.Path == "" {
			return fmt.Errorf("data dir or path required for csv source")
		}
	case "parquet":
		if c.Data.Dir == "" {
			return fmt.Errorf("data dir required for parquet source")
		}
	case "alpaca":
	default:
		return fmt.Errorf("data.source must be 'csv', 'parquet' or 'alpaca'")
	}
	if c.Data.Retries < 0 {
		return fmt.Errorf("data.retries must not be negative")
	}
	if _, err := c.Data.Delay(); err != nil {
		return fmt.Errorf("data.retry_delay: %w", err)
	}
	return nil
}

// Range parses the start and end dates as UTC midnights.
func (b BacktestConfig) Range() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, b.Start)
	if err != nil {
		return start, end, fmt.Errorf("backtest.start must be YYYY-MM-DD: %w", err)
	}
	end, err = time.Parse(DateLayout, b.End)
	if err != nil {
		return start, end, fmt.Errorf("backtest.end must be YYYY-MM-DD: %w", err)
	}
	return start, end, nil
}

// Delay parses RetryDelay; empty means the source default.
func (d DataConfig) Delay() (time.Duration, error) {
	if d.RetryDelay == "" {
		return 0, nil
	}
	return time.ParseDuration(d.RetryDelay)
}

// Credentials returns the Alpaca key pair, falling back to the environment.
func (a AlpacaConfig) Credentials() (key, secret string) {
	key, secret = a.APIKey, a.APISecret
	if key == "" {
		key = os.Getenv("APCA_API_KEY_ID")
	}
	if secret == "" {
		secret = os.Getenv("APCA_API_SECRET_KEY")
	}
	return key, secret
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			Symbol:      "AAPL",
			Start:       "2023-01-01",
			End:         "2024-01-01",
			Timeframe:   "1d",
			InitialCash: 100000,
			Commission:  0.0003,
		},
		Strategy: strategies.Config{
			Name:  "sma-cross",
			Short: 10,
			Long:  30,
		},
		Sizer: sizing.Config{
			Kind:  "cash-pct",
			Value: 0.95,
		},
		Data: DataConfig{
			Source:     "csv",
			Dir:        "./data",
			Retries:    3,
			RetryDelay: "1s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
