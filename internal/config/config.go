// Package config loads the exchange's configuration from a YAML file and
// environment variables, the way the teacher's internal/config/config.go
// does: a mapstructure-tagged struct populated by spf13/viper, defaults
// set before the file is read, env vars under a fixed prefix overriding
// both. Struct validation is added via go-playground/validator, a
// dependency the teacher pack carries but the teacher itself never wires.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the exchange's complete runtime configuration.
type Config struct {
	Server struct {
		Host string `mapstructure:"host" validate:"required"`
		Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	} `mapstructure:"server"`

	Exchange struct {
		Symbol   string `mapstructure:"symbol" validate:"required"`
		Timezone string `mapstructure:"timezone" validate:"required"`
	} `mapstructure:"exchange"`

	Journal struct {
		BookLogPath   string `mapstructure:"book_log_path" validate:"required"`
		TxnLogPath    string `mapstructure:"txn_log_path" validate:"required"`
		ActionLogPath string `mapstructure:"action_log_path" validate:"required"`
	} `mapstructure:"journal"`

	Monitoring struct {
		MetricsPort int    `mapstructure:"metrics_port" validate:"min=0,max=65535"`
		LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	} `mapstructure:"monitoring"`
}

// Load reads configuration from configPath (a directory to search for
// config.yaml) plus environment variables prefixed CDAX_, applying
// defaults first, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cda-exchange")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("CDAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{
		"server.host", "server.port",
		"exchange.symbol", "exchange.timezone",
		"journal.book_log_path", "journal.txn_log_path", "journal.action_log_path",
		"monitoring.metrics_port", "monitoring.log_level",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8090

	cfg.Exchange.Symbol = "AAPL"
	cfg.Exchange.Timezone = "America/New_York"

	cfg.Journal.BookLogPath = "market_logs/book.log"
	cfg.Journal.TxnLogPath = "market_logs/transactions.log"
	cfg.Journal.ActionLogPath = "market_logs/actions.log"

	cfg.Monitoring.MetricsPort = 9090
	cfg.Monitoring.LogLevel = "info"
}

// NewLogger builds a zap.Logger from cfg.Monitoring.LogLevel, mirroring the
// teacher's InitLogger: "debug" selects the development logger, and every
// other level selects the production logger at its default info level.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	switch cfg.Monitoring.LogLevel {
	case "debug":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
