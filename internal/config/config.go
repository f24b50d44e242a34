package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the project config file, relative to the project root.
const FileName = "ledgerlens.yaml"

// EnvPrefix prefixes environment overrides, e.g. LEDGERLENS_LOG_LEVEL.
const EnvPrefix = "LEDGERLENS"

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config represents the top-level ledgerlens.yaml configuration.
type Config struct {
	Profile  ProfileConfig  `yaml:"profile" mapstructure:"profile"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Feeds    []Feed         `yaml:"feeds,omitempty" mapstructure:"feeds"`
	Detector DetectorConfig `yaml:"detector" mapstructure:"detector"`
	Summary  SummaryConfig  `yaml:"summary" mapstructure:"summary"`
	Refresh  RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
	Git      GitConfig      `yaml:"git" mapstructure:"git"`
}

// ProfileConfig identifies whose finances these are.
type ProfileConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Currency string `yaml:"currency" mapstructure:"currency"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
}

// StorageConfig selects where raw snapshots live.
type StorageConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	SnapshotDir string `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir"` // derived ledger; empty disables
	PostgresDSN string `yaml:"-" mapstructure:"postgres_dsn"` // from DATABASE_URL only
}

// Feed maps an import file to a ledger source and a parser format.
type Feed struct {
	Name   string `yaml:"name" mapstructure:"name"`     // file name prefix in import/
	Source string `yaml:"source" mapstructure:"source"` // "checking" or "credit"
	Format string `yaml:"format" mapstructure:"format"` // importer format
}

// DetectorConfig tunes subscription detection.
type DetectorConfig struct {
	MinGapDays          int    `yaml:"min_gap_days" mapstructure:"min_gap_days"`
	MaxGapDays          int    `yaml:"max_gap_days" mapstructure:"max_gap_days"`
	MaxPriceDelta       string `yaml:"max_price_delta" mapstructure:"max_price_delta"` // decimal, e.g. "2.00"
	GroupBlankMerchants bool   `yaml:"group_blank_merchants" mapstructure:"group_blank_merchants"`
}

// SummaryConfig controls the default spending window.
type SummaryConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// RefreshConfig controls the stale-data warning. Zero disables it.
type RefreshConfig struct {
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	AuthorName  string `yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`
}

// Load reads a ledgerlens.yaml file, applies defaults and LEDGERLENS_*
// environment overrides, and validates the result. A .env file next to the
// config is loaded first when present.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	loadDotEnv(path)

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("storage.postgres_dsn", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding DATABASE_URL: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(configPath string) {
	envFile := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(profileName string) *Config {
	return &Config{
		Profile: ProfileConfig{
			Name:     profileName,
			Currency: "USD",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend:     BackendFile,
			SnapshotDir: "snapshots",
			CacheDir:    "cache",
		},
		Feeds: []Feed{
			{Name: "checking", Source: "checking", Format: "chase"},
			{Name: "credit", Source: "credit", Format: "chase-credit"},
		},
		Detector: DetectorConfig{
			MinGapDays:    25,
			MaxGapDays:    35,
			MaxPriceDelta: "2.00",
		},
		Summary: SummaryConfig{
			WindowDays: 30,
		},
		Refresh: RefreshConfig{
			MaxAgeDays: 7,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "ledgerlens",
			AuthorEmail: "ledgerlens@localhost",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default("")
	v.SetDefault("profile.currency", d.Profile.Currency)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.snapshot_dir", d.Storage.SnapshotDir)
	v.SetDefault("storage.cache_dir", d.Storage.CacheDir)
	v.SetDefault("detector.min_gap_days", d.Detector.MinGapDays)
	v.SetDefault("detector.max_gap_days", d.Detector.MaxGapDays)
	v.SetDefault("detector.max_price_delta", d.Detector.MaxPriceDelta)
	v.SetDefault("detector.group_blank_merchants", false)
	v.SetDefault("summary.window_days", d.Summary.WindowDays)
	v.SetDefault("refresh.max_age_days", d.Refresh.MaxAgeDays)
	v.SetDefault("git.auto_commit", d.Git.AutoCommit)
	v.SetDefault("git.author_name", d.Git.AuthorName)
	v.SetDefault("git.author_email", d.Git.AuthorEmail)
}

// Validate checks values that would otherwise fail later at run time.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q is not a log level", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	switch c.Storage.Backend {
	case BackendFile:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.backend postgres requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q must be file or postgres", c.Storage.Backend))
	}

	for i, f := range c.Feeds {
		if f.Source != "checking" && f.Source != "credit" {
			errs = append(errs, fmt.Errorf("feeds[%d].source %q must be checking or credit", i, f.Source))
		}
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("feeds[%d].name is empty", i))
		}
	}

	if c.Detector.MinGapDays < 0 || c.Detector.MaxGapDays <= c.Detector.MinGapDays {
		errs = append(errs, fmt.Errorf("detector gap bounds (%d, %d) are not an interval",
			c.Detector.MinGapDays, c.Detector.MaxGapDays))
	}
	if delta, err := c.Detector.PriceDelta(); err != nil {
		errs = append(errs, err)
	} else if delta.IsNegative() {
		errs = append(errs, fmt.Errorf("detector.max_price_delta %s is negative", c.Detector.MaxPriceDelta))
	}
	if c.Summary.WindowDays < 0 {
		errs = append(errs, fmt.Errorf("summary.window_days %d is negative", c.Summary.WindowDays))
	}
	if c.Refresh.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("refresh.max_age_days %d is negative", c.Refresh.MaxAgeDays))
	}
	return errors.Join(errs...)
}

// PriceDelta parses MaxPriceDelta.
func (d DetectorConfig) PriceDelta() (decimal.Decimal, error) {
	delta, err := decimal.NewFromString(strings.TrimSpace(d.MaxPriceDelta))
	if err != nil {
		return decimal.Zero, fmt.Errorf("detector.max_price_delta %q is not a decimal", d.MaxPriceDelta)
	}
	return delta, nil
}
