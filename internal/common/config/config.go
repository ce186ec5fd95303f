// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NLP       NLPConfig       `mapstructure:"nlp"`
	Session   SessionConfig   `mapstructure:"session"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Configuration ---

// NLPConfig pins the acceptance thresholds so matching behavior stays
// reproducible across deployments.
type NLPConfig struct {
	FuzzyThreshold  float64 `mapstructure:"fuzzy_threshold"`
	IntentThreshold float64 `mapstructure:"intent_threshold"`
	HindiScriptMin  float64 `mapstructure:"hindi_script_min"` // Devanagari share forcing "hi"
}

type SessionConfig struct {
	Store      string `mapstructure:"store"`       // "redis" or "memory"
	TTL        int    `mapstructure:"ttl"`         // seconds
	SweepEvery int    `mapstructure:"sweep_every"` // seconds, 0 = lazy only
}

func (s SessionConfig) TTLDuration() time.Duration {
	return time.Duration(s.TTL) * time.Second
}

func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepEvery) * time.Second
}

type CacheConfig struct {
	Store       string `mapstructure:"store"`        // "redis" or "memory"
	MaxEntries  int    `mapstructure:"max_entries"`  // memory store LRU bound
	StaleFactor int    `mapstructure:"stale_factor"` // stale copy lives TTL*factor
}

// ProviderConfig holds the settings common to every upstream adapter.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	TTL     int    `mapstructure:"ttl"`     // seconds
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

func (p ProviderConfig) TTLDuration() time.Duration {
	return time.Duration(p.TTL) * time.Second
}

func (p ProviderConfig) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Millisecond
}

type ProvidersConfig struct {
	Weather ProviderConfig `mapstructure:"weather"`
	Market  ProviderConfig `mapstructure:"market"`
	Scheme  ProviderConfig `mapstructure:"scheme"`
	Soil    ProviderConfig `mapstructure:"soil"`
	Pest    ProviderConfig `mapstructure:"pest"`
}

// --- Admission Control ---

type LimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
	PerDay    int `mapstructure:"per_day"`
}

type RateLimitConfig struct {
	Enabled   bool                   `mapstructure:"enabled"`
	Default   LimitConfig            `mapstructure:"default"`
	Endpoints map[string]LimitConfig `mapstructure:"endpoints"`
	Whitelist []string               `mapstructure:"whitelist"` // IPs or CIDRs
}

// LimitsFor returns the endpoint-specific limits with fallback to defaults.
func (r RateLimitConfig) LimitsFor(endpoint string) LimitConfig {
	if l, ok := r.Endpoints[endpoint]; ok {
		return l
	}
	return r.Default
}

// --- Alerts ---

type AlertsConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Region       string   `mapstructure:"region"`
	FromEmail    string   `mapstructure:"from_email"`
	PhoneNumbers []string `mapstructure:"phone_numbers"`
	Emails       []string `mapstructure:"emails"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
