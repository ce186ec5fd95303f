// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/errors"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like RATE_LIMIT_DEFAULT_PER_MINUTE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "advisory-server"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.NLP.FuzzyThreshold == 0 {
		cfg.NLP.FuzzyThreshold = 0.6
	}
	if cfg.NLP.IntentThreshold == 0 {
		cfg.NLP.IntentThreshold = 0.6
	}
	if cfg.NLP.HindiScriptMin == 0 {
		cfg.NLP.HindiScriptMin = 0.3
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = "redis"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800 // 30 minutes
	}
	if cfg.Session.SweepEvery == 0 {
		cfg.Session.SweepEvery = 300
	}

	if cfg.Cache.Store == "" {
		cfg.Cache.Store = "redis"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 4096
	}
	if cfg.Cache.StaleFactor == 0 {
		cfg.Cache.StaleFactor = 10
	}

	applyProviderDefaults(&cfg.Providers.Weather, 600, 4000)
	applyProviderDefaults(&cfg.Providers.Market, 900, 4000)
	applyProviderDefaults(&cfg.Providers.Scheme, 3600, 4000)
	applyProviderDefaults(&cfg.Providers.Soil, 3600, 4000)
	applyProviderDefaults(&cfg.Providers.Pest, 3600, 2000)

	if cfg.RateLimit.Default.PerMinute == 0 {
		cfg.RateLimit.Default.PerMinute = 30
	}
	if cfg.RateLimit.Default.PerHour == 0 {
		cfg.RateLimit.Default.PerHour = 500
	}
	if cfg.RateLimit.Default.PerDay == 0 {
		cfg.RateLimit.Default.PerDay = 5000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

func applyProviderDefaults(p *ProviderConfig, ttlSeconds, timeoutMillis int) {
	if p.TTL == 0 {
		p.TTL = ttlSeconds
	}
	if p.Timeout == 0 {
		p.Timeout = timeoutMillis
	}
}

// validateConfig validates critical configuration fields. A failure here is a
// ConfigurationError: fatal at startup, never recoverable per-request.
func validateConfig(cfg *Config) error {
	if cfg.Database.Redis.Address == "" {
		return apperrors.NewConfigurationError("database.redis.address is required")
	}

	if cfg.NLP.FuzzyThreshold < 0 || cfg.NLP.FuzzyThreshold > 1 {
		return apperrors.NewConfigurationError("nlp.fuzzy_threshold must be in [0,1]")
	}
	if cfg.NLP.IntentThreshold < 0 || cfg.NLP.IntentThreshold > 1 {
		return apperrors.NewConfigurationError("nlp.intent_threshold must be in [0,1]")
	}

	if cfg.Session.TTL < 0 {
		return apperrors.NewConfigurationError("session.ttl must not be negative")
	}
	if cfg.Session.Store != "redis" && cfg.Session.Store != "memory" {
		return apperrors.NewConfigurationError("session.store must be redis or memory")
	}
	if cfg.Cache.Store != "redis" && cfg.Cache.Store != "memory" {
		return apperrors.NewConfigurationError("cache.store must be redis or memory")
	}

	if cfg.Alerts.Enabled && cfg.Alerts.Region == "" {
		return apperrors.NewConfigurationError("alerts.region is required when alerts are enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
