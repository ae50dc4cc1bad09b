package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the httpdlog CLI.
type Config struct {
	Log      LogConfig
	Scan     ScanConfig
	Output   OutputConfig
	Registry RegistryConfig
}

// LogConfig configures the ambient structured logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // "console" or "json"
}

// ScanConfig bounds §5's concurrency model.
type ScanConfig struct {
	MaxWorkers       int // upper bound on concurrent file workers; 0 = one per file
	AutodetectSample int // lines sampled for format auto-detection / conf resolution (§4.6, §6)
}

// OutputConfig controls the Arrow/Parquet materialization path.
type OutputConfig struct {
	SpillToParquet bool   // write each file's batch to a Parquet file instead of holding it in memory
	SpillDirectory string // destination directory when SpillToParquet is set
}

// RegistryConfig selects defaults for read_httpd_log when no explicit
// format is given (§6's selection precedence).
type RegistryConfig struct {
	DefaultFormatType string // "common", "combined", or "" to require explicit selection / autodetect
}

// Load builds a Config the way Arc does from defaults, an optional TOML
// config file and environment variables (HTTPDLOG_* prefix). Per viper's
// precedence, the config file overrides defaults and environment
// variables override both.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("HTTPDLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("httpdlog")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/httpdlog/")
	v.AddConfigPath("$HOME/.httpdlog/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Scan: ScanConfig{
			MaxWorkers:       v.GetInt("scan.max_workers"),
			AutodetectSample: v.GetInt("scan.autodetect_sample"),
		},
		Output: OutputConfig{
			SpillToParquet: v.GetBool("output.spill_to_parquet"),
			SpillDirectory: v.GetString("output.spill_directory"),
		},
		Registry: RegistryConfig{
			DefaultFormatType: v.GetString("registry.default_format_type"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("scan.max_workers", 0)
	v.SetDefault("scan.autodetect_sample", 10)

	v.SetDefault("output.spill_to_parquet", false)
	v.SetDefault("output.spill_directory", "./data")

	v.SetDefault("registry.default_format_type", "")
}
