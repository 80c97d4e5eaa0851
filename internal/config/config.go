package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel    string  `mapstructure:"log_level"`
	LogFile     string  `mapstructure:"log_file"`
	DictFile    string  `mapstructure:"dict_file"`    // YAML поверх встроенных словарей
	CatalogFile string  `mapstructure:"catalog_file"` // .xlsx/.xls/.csv/.json
	Threshold   float64 `mapstructure:"threshold"`    // минимальный score SPU (0..1)
	Workers     int     `mapstructure:"workers"`      // параллелизм предобработки каталога
}

// Load: defaults -> config.yaml (optional) -> PMATCH_* env.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("PMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/product-matcher.log")
	v.SetDefault("dict_file", "")
	v.SetDefault("catalog_file", "")
	v.SetDefault("threshold", 0.5)
	v.SetDefault("workers", 4)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return Config{}, fmt.Errorf("threshold %.2f out of range [0,1]", cfg.Threshold)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
