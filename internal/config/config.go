package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults used when neither file, environment, nor flags say otherwise.
const (
	DefaultDBPath      = "data/confwatch.db"
	DefaultExportPath  = "data/confwatch.xlsx"
	DefaultInterval    = 72 * time.Hour
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultNaKonferenciiCategory is the economics/management/finance
	// category archive watched out of the box.
	DefaultNaKonferenciiCategory = "https://na-konferencii.ru/conference-cat/obshhestvennyie-gumanitarnyie-nauki/jekonomika-upravlenie-finansy"
	// DefaultTelegramChannel is the public channel watched out of the box.
	DefaultTelegramChannel = "smuecon218"
)

// Sources holds per-source settings that are not derivable from the
// source itself.
type Sources struct {
	NaKonferenciiCategory string `mapstructure:"na_konferencii_category"`
	NaKonferenciiPages    int    `mapstructure:"na_konferencii_pages"`
	TelegramChannel       string `mapstructure:"telegram_channel"`
	TelegramMessages      int    `mapstructure:"telegram_messages"`
}

// Config is the full runtime configuration.
type Config struct {
	DBPath       string        `mapstructure:"db_path"`
	Export       bool          `mapstructure:"export"`
	ExportPath   string        `mapstructure:"export_path"`
	Interval     time.Duration `mapstructure:"interval"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	BackfillDays int           `mapstructure:"backfill_days"`
	Verbose      bool          `mapstructure:"verbose"`
	Sources      Sources       `mapstructure:"sources"`
}

// Load reads configuration. path may be empty, in which case only
// defaults and the environment apply; a named file that does not exist
// is an error.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; any other read failure is real.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("export", false)
	v.SetDefault("export_path", DefaultExportPath)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("backfill_days", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("sources.na_konferencii_category", DefaultNaKonferenciiCategory)
	v.SetDefault("sources.na_konferencii_pages", 0)
	v.SetDefault("sources.telegram_channel", DefaultTelegramChannel)
	v.SetDefault("sources.telegram_messages", 0)

	v.SetEnvPrefix("CONFWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.BackfillDays < 0 {
		return fmt.Errorf("backfill_days must not be negative, got %d", c.BackfillDays)
	}
	return nil
}
