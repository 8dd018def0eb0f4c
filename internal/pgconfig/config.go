// Package pgconfig loads the YAML-backed tree configuration, the same
// viper-driven pattern the teacher repo used for its storage/server
// config (internal/config.go), generalized to the knobs this index
// engine actually has.
package pgconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// BtreeConfig mirrors spec 6's tree-level knobs.
type BtreeConfig struct {
	Order                    int     `mapstructure:"order"`
	EnableCompression        bool    `mapstructure:"enable_compression"`
	MinPayloadForGeneral     int     `mapstructure:"min_payload_for_general"`
	EstimatedAcceptanceRatio float64 `mapstructure:"estimated_acceptance_ratio"`
	ActualAcceptanceRatio    float64 `mapstructure:"actual_acceptance_ratio"`
	MaxMaterializedPages     int     `mapstructure:"max_materialized_pages"`
}

// LoggingConfig mirrors the teacher's server.debug flag, generalized to
// a slog level/format pair instead of a single bool.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the root document unmarshaled from YAML.
type Config struct {
	Btree   BtreeConfig   `mapstructure:"btree"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Default returns the configuration spec 6 documents as the built-in
// defaults, used whenever no YAML file is supplied.
func Default() Config {
	return Config{
		Btree: BtreeConfig{
			Order:                    256,
			EnableCompression:        true,
			MinPayloadForGeneral:     128,
			EstimatedAcceptanceRatio: 0.9,
			ActualAcceptanceRatio:    0.95,
			MaxMaterializedPages:     0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file at path, starting from Default() so a
// partial file only overrides the keys it mentions.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setViperDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("pgconfig: read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("pgconfig: unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setViperDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("btree.order", cfg.Btree.Order)
	v.SetDefault("btree.enable_compression", cfg.Btree.EnableCompression)
	v.SetDefault("btree.min_payload_for_general", cfg.Btree.MinPayloadForGeneral)
	v.SetDefault("btree.estimated_acceptance_ratio", cfg.Btree.EstimatedAcceptanceRatio)
	v.SetDefault("btree.actual_acceptance_ratio", cfg.Btree.ActualAcceptanceRatio)
	v.SetDefault("btree.max_materialized_pages", cfg.Btree.MaxMaterializedPages)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// Validate rejects configurations that would violate a tree invariant
// before a Tree is ever constructed (spec 7, ErrInvalidOrder).
func (c Config) Validate() error {
	if c.Btree.Order < 4 {
		return fmt.Errorf("pgconfig: btree.order must be >= 4, got %d", c.Btree.Order)
	}
	if c.Btree.MinPayloadForGeneral < 0 {
		return fmt.Errorf("pgconfig: btree.min_payload_for_general must be >= 0")
	}
	if c.Btree.EstimatedAcceptanceRatio <= 0 || c.Btree.EstimatedAcceptanceRatio > 1 {
		return fmt.Errorf("pgconfig: btree.estimated_acceptance_ratio must be in (0, 1]")
	}
	if c.Btree.ActualAcceptanceRatio <= 0 || c.Btree.ActualAcceptanceRatio > 1 {
		return fmt.Errorf("pgconfig: btree.actual_acceptance_ratio must be in (0, 1]")
	}
	if c.Btree.MaxMaterializedPages < 0 {
		return fmt.Errorf("pgconfig: btree.max_materialized_pages must be >= 0")
	}
	return nil
}
