package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/session"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// MinSecretLength is the shortest signing secret accepted outside development
const MinSecretLength = 32

// EnvDevelopment relaxes secret length validation
const EnvDevelopment = "development"

// Config holds all application configuration
type Config struct {
	// Deployment environment, e.g. "production" or "development"
	Env string `yaml:"env"`

	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Auth configuration
	Auth AuthConfig `yaml:"auth"`

	// Google sign-in configuration
	Google GoogleConfig `yaml:"google"`

	// Storage configuration
	Storage storage.Config `yaml:"storage"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Origins allowed to make credentialed cross-origin requests.
	// Defaults to the frontend URL.
	CORSOrigins []string `yaml:"cors_origins"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// AuthConfig holds token and session settings
type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret"`
	TokenTransport string `yaml:"token_transport"` // cookie or body
	CookieDomain   string `yaml:"cookie_domain"`
	CookieSecure   bool   `yaml:"cookie_secure"`
	CookieSameSite string `yaml:"cookie_samesite"`
	FrontendURL    string `yaml:"frontend_url"`
	FederatedMerge string `yaml:"federated_merge"` // merge or reject
}

// GoogleConfig holds the OAuth client registration
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether Google sign-in is configured
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json or text

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool    `yaml:"otel_enabled"`
	OTelEndpoint       string  `yaml:"otel_endpoint"`
	OTelServiceName    string  `yaml:"otel_service_name"`
	OTelServiceVersion string  `yaml:"otel_service_version"`
	OTelInsecure       bool    `yaml:"otel_insecure"` // Use insecure gRPC connection
	OTelSampleRatio    float64 `yaml:"otel_sample_ratio"`
}

// Level returns the parsed log level, falling back to info
func (o ObservabilityConfig) Level() observability.LogLevel {
	level, err := observability.ParseLogLevel(o.LogLevel)
	if err != nil {
		return observability.InfoLevel
	}
	return level
}

// OTel converts the settings for observability.InitOTel
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
		SampleRatio:    o.OTelSampleRatio,
	}
}

// Session converts the auth settings for session.New
func (c *Config) Session() (session.Config, error) {
	sameSite, err := session.ParseSameSite(c.Auth.CookieSameSite)
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Transport: c.Auth.TokenTransport,
		Domain:    c.Auth.CookieDomain,
		Secure:    c.Auth.CookieSecure,
		SameSite:  sameSite,
	}, nil
}

// Default returns the configuration used before any file or environment
// overrides are applied
func Default() *Config {
	return &Config{
		Env: "production",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Auth: AuthConfig{
			TokenTransport: session.TransportCookie,
			CookieSameSite: "lax",
			FrontendURL:    "http://localhost:5173",
			FederatedMerge: "merge",
		},
		Storage: storage.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			LogFormat:          "json",
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "eventbook",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
			OTelSampleRatio:    1.0,
		},
	}
}

// LoadConfig loads configuration from an optional YAML file named by
// EVENTBOOK_CONFIG_FILE, then from environment variables
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("EVENTBOOK_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Env = getEnv("EVENTBOOK_ENV", cfg.Env)
	loadServerConfig(&cfg.Server)
	loadAuthConfig(&cfg.Auth)
	loadGoogleConfig(&cfg.Google)
	loadStorageConfig(&cfg.Storage)
	loadObservabilityConfig(&cfg.Observability)

	if len(cfg.Server.CORSOrigins) == 0 && cfg.Auth.FrontendURL != "" {
		cfg.Server.CORSOrigins = []string{cfg.Auth.FrontendURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a YAML file over cfg
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(cfg *ServerConfig) {
	cfg.Host = getEnv("EVENTBOOK_HOST", cfg.Host)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.ReadTimeout = getEnvDuration("EVENTBOOK_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = getEnvDuration("EVENTBOOK_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = getEnvDuration("EVENTBOOK_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = getEnvDuration("EVENTBOOK_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.HealthPort = getEnv("EVENTBOOK_HEALTH_PORT", cfg.HealthPort)
	cfg.CORSOrigins = getEnvList("EVENTBOOK_CORS_ORIGINS", cfg.CORSOrigins)
}

// loadAuthConfig loads token and cookie settings from environment
func loadAuthConfig(cfg *AuthConfig) {
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTransport = strings.ToLower(getEnv("EVENTBOOK_TOKEN_TRANSPORT", cfg.TokenTransport))
	cfg.CookieDomain = getEnv("COOKIE_DOMAIN", cfg.CookieDomain)
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", cfg.CookieSecure)
	cfg.CookieSameSite = getEnv("COOKIE_SAMESITE", cfg.CookieSameSite)
	cfg.FrontendURL = strings.TrimSuffix(getEnv("FRONTEND_URL", cfg.FrontendURL), "/")
	cfg.FederatedMerge = strings.ToLower(getEnv("EVENTBOOK_FEDERATED_MERGE", cfg.FederatedMerge))
}

// loadGoogleConfig loads OAuth client settings from environment
func loadGoogleConfig(cfg *GoogleConfig) {
	cfg.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.ClientID)
	cfg.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.ClientSecret)
	cfg.RedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.RedirectURL)
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig(cfg *storage.Config) {
	cfg.Driver = strings.ToLower(getEnv("EVENTBOOK_STORAGE_DRIVER", cfg.Driver))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	if maxConns := getEnvInt("EVENTBOOK_DB_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns := getEnvInt("EVENTBOOK_DB_MIN_CONNS", 0); minConns > 0 {
		cfg.MinConns = minConns
	}
	if timeout := getEnvDuration("EVENTBOOK_DB_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.AutoMigrate = getEnvBool("EVENTBOOK_DB_AUTO_MIGRATE", cfg.AutoMigrate)

	// Redis config
	cfg.RedisURL = getEnv("EVENTBOOK_REDIS_URL", cfg.RedisURL)
	cfg.RedisPassword = getEnv("EVENTBOOK_REDIS_PASSWORD", cfg.RedisPassword)
	if redisDB := getEnvInt("EVENTBOOK_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisPoolSize := getEnvInt("EVENTBOOK_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	// Cache config
	if ttl := getEnvDuration("EVENTBOOK_CACHE_TTL", 0); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	if l1CacheSize := getEnvInt("EVENTBOOK_L1_CACHE_SIZE", 0); l1CacheSize > 0 {
		cfg.L1CacheSize = l1CacheSize
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig(cfg *ObservabilityConfig) {
	cfg.LogLevel = getEnv("EVENTBOOK_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(getEnv("EVENTBOOK_LOG_FORMAT", cfg.LogFormat))
	cfg.MetricsEnabled = getEnvBool("EVENTBOOK_METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.OTelEnabled = getEnvBool("EVENTBOOK_OTEL_ENABLED", cfg.OTelEnabled)
	cfg.OTelEndpoint = getEnv("EVENTBOOK_OTEL_ENDPOINT", cfg.OTelEndpoint)
	cfg.OTelServiceName = getEnv("EVENTBOOK_OTEL_SERVICE_NAME", cfg.OTelServiceName)
	cfg.OTelServiceVersion = getEnv("EVENTBOOK_OTEL_SERVICE_VERSION", cfg.OTelServiceVersion)
	cfg.OTelInsecure = getEnvBool("EVENTBOOK_OTEL_INSECURE", cfg.OTelInsecure)
	cfg.OTelSampleRatio = getEnvFloat("EVENTBOOK_OTEL_SAMPLE_RATIO", cfg.OTelSampleRatio)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate auth config
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < MinSecretLength && c.Env != EnvDevelopment {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	switch c.Auth.TokenTransport {
	case session.TransportCookie, session.TransportBody:
	default:
		return fmt.Errorf("invalid token transport: %s (must be cookie or body)", c.Auth.TokenTransport)
	}
	if _, err := session.ParseSameSite(c.Auth.CookieSameSite); err != nil {
		return err
	}
	switch c.Auth.FederatedMerge {
	case "merge", "reject":
	default:
		return fmt.Errorf("invalid federated merge policy: %s (must be merge or reject)", c.Auth.FederatedMerge)
	}

	// Validate Google config
	if c.Google.Enabled() {
		if c.Google.RedirectURL == "" {
			return fmt.Errorf("GOOGLE_REDIRECT_URL is required when Google sign-in is enabled")
		}
		if c.Auth.FrontendURL == "" {
			return fmt.Errorf("FRONTEND_URL is required when Google sign-in is enabled")
		}
	}
	if c.Auth.FrontendURL != "" {
		if u, err := url.Parse(c.Auth.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid FRONTEND_URL: %q", c.Auth.FrontendURL)
		}
	}

	// Validate storage config based on driver
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s storage", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory, postgres, or sqlite)", c.Storage.Driver)
	}

	// Validate observability config
	if _, err := observability.ParseLogLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	switch c.Observability.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma separated environment variable or a default
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
