package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Scryfall ScryfallConfig `yaml:"scryfall" mapstructure:"scryfall"`
	EDHREC   EDHRECConfig   `yaml:"edhrec" mapstructure:"edhrec"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ScryfallConfig configures the catalog source.
type ScryfallConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Query   string `yaml:"query" mapstructure:"query"`
	PageRPS int    `yaml:"page_rps" mapstructure:"page_rps"`
}

// EDHRECConfig configures the deck-count source.
type EDHRECConfig struct {
	RouteBaseURL string `yaml:"route_base_url" mapstructure:"route_base_url"`
}

// HTTPConfig configures shared HTTP client behavior.
type HTTPConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EDHTAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scryfall.base_url", "https://api.scryfall.com")
	v.SetDefault("scryfall.query", "t:legendary type:creature legal:commander game:paper")
	v.SetDefault("scryfall.page_rps", 10)
	v.SetDefault("edhrec.route_base_url", "https://edhrec.com/route/")
	v.SetDefault("http.user_agent", "edhtail/1.0 (contact: data@sellsadvisors.com)")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("store.path", "edhtail.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
