package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fhirgate/internal/core/validation"
)

// DefaultMaxBodyBytes is the default size limit for request and reply bodies
const DefaultMaxBodyBytes int64 = 10 << 20

// Config is the typed view of the viper configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Proxy      ProxyConfig      `mapstructure:"proxy"`
	Validation ValidationConfig `mapstructure:"validation"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Faults     FaultsConfig     `mapstructure:"faults"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// BasePath is stripped from the request path before validation
	BasePath string `mapstructure:"base_path"`
	// MaxBodyBytes caps request bodies; larger ones get 413
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ProxyConfig struct {
	// Enabled is the feature flag; when false authenticated requests get 403
	Enabled bool `mapstructure:"enabled"`
}

type ValidationConfig struct {
	AllowedPrefixes []string `mapstructure:"allowed_prefixes"`
	RequiredHeaders []string `mapstructure:"required_headers"`
}

// Rules converts the section into validator rules
func (v ValidationConfig) Rules() validation.Rules {
	return validation.Rules{
		AllowedPrefixes: v.AllowedPrefixes,
		RequiredHeaders: v.RequiredHeaders,
	}
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SecretEnv is the environment variable holding the HMAC secret
	SecretEnv string        `mapstructure:"secret_env"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

// Secret reads the HMAC secret from the environment
func (a AuthConfig) Secret() []byte {
	if a.SecretEnv == "" {
		return nil
	}
	return []byte(os.Getenv(a.SecretEnv))
}

// FaultsConfig lists extra host fault name -> catalog key pairs. Fault names
// contain dots and are case sensitive, so they are kept out of map keys.
type FaultsConfig struct {
	Mappings []FaultMapping `mapstructure:"mappings"`
}

type FaultMapping struct {
	Name string `mapstructure:"name"`
	Key  string `mapstructure:"key"`
}

// Names returns the mappings as a lookup table
func (f FaultsConfig) Names() map[string]string {
	names := make(map[string]string, len(f.Mappings))
	for _, m := range f.Mappings {
		names[m.Name] = m.Key
	}
	return names
}

type CatalogConfig struct {
	// File is an optional YAML file with extra or replacement entries
	File string `mapstructure:"file"`
}

// UpstreamConfig defines the backend the gateway forwards valid requests to
type UpstreamConfig struct {
	// BaseURL supports the "env:VAR" syntax; empty disables forwarding
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HeaderPolicy HeaderPolicy  `mapstructure:"header_policy"`
	// MaxResponseBytes caps buffered reply bodies; larger replies are errors
	MaxResponseBytes int64 `mapstructure:"max_response_bytes"`
}

// HeaderPolicy defines rules for handling HTTP headers
type HeaderPolicy struct {
	// Allow lists headers to pass through from client requests
	Allow []string `mapstructure:"allow"`
	// Set maps headers to force set (supports "env:VAR" syntax for env vars)
	Set map[string]string `mapstructure:"set"`
	// Remove lists headers to exclude from upstream requests
	Remove []string `mapstructure:"remove"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Init 初始化配置，加载 .env 和 config.yaml
func Init(cfgFile string) {
	// Load .env file (ignore if not exists)
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	// Environment variables
	viper.SetEnvPrefix("FHIRGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	rules := validation.DefaultRules()

	v.SetDefault("log.level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("proxy.enabled", true)
	v.SetDefault("validation.allowed_prefixes", rules.AllowedPrefixes)
	v.SetDefault("validation.required_headers", rules.RequiredHeaders)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret_env", "FHIRGATE_AUTH_SECRET")
	v.SetDefault("auth.leeway", 30*time.Second)
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.max_response_bytes", DefaultMaxBodyBytes)
	v.SetDefault("metrics.enabled", true)
}

// Load decodes the viper state into a Config
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Validation.AllowedPrefixes) == 0 {
		return nil, fmt.Errorf("validation.allowed_prefixes must not be empty")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("server.max_body_bytes must be positive")
	}
	cfg.Server.BasePath = strings.TrimRight(cfg.Server.BasePath, "/")
	return &cfg, nil
}
