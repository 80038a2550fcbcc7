package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/validation"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	API      APIConfig
	Auth     AuthConfig
	Captcha  CaptchaConfig
	Breaker  BreakerConfig
	Security SecurityConfig
	Kafka    KafkaConfig
	OTel     OTelConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

// APIConfig holds the base URLs of the link backend. Both are read once at
// startup.
type APIConfig struct {
	GraphQLBaseURL string
	HTTPBaseURL    string
	Timeout        time.Duration
}

type AuthConfig struct {
	Token string
}

type CaptchaConfig struct {
	Response string
}

type BreakerConfig struct {
	MaxFailures int
	OpenTimeout time.Duration
}

// SecurityConfig guards the HTTP gateway. A zero CreateRatePerMinute
// disables rate limiting; empty AllowedOrigins accepts any origin.
type SecurityConfig struct {
	CreateRatePerMinute int
	AllowedOrigins      []string
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
	GroupID  string
}

// Enabled reports whether link events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

var ErrInvalidConfig = errors.New("invalid configuration")

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:     GetEnv("APP_NAME", "shortlink"),
			Version:  GetEnv("APP_VERSION", "0.1.0"),
			Env:      GetEnv("APP_ENV", "development"),
			LogLevel: GetEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: GetEnv("APP_PORT", "8080"),
			Host: GetEnv("APP_HOST", "localhost"),
		},
		API: APIConfig{
			GraphQLBaseURL: GetEnv("GRAPHQL_API_BASE_URL", "http://localhost:8081"),
			HTTPBaseURL:    GetEnv("HTTP_API_BASE_URL", "http://localhost"),
			Timeout:        GetEnvDuration("GRAPHQL_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Token: GetEnv("AUTH_TOKEN", ""),
		},
		Captcha: CaptchaConfig{
			Response: GetEnv("CAPTCHA_TOKEN", ""),
		},
		Breaker: BreakerConfig{
			MaxFailures: GetEnvInt("GRAPHQL_BREAKER_MAX_FAILURES", 5),
			OpenTimeout: GetEnvDuration("GRAPHQL_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Security: SecurityConfig{
			CreateRatePerMinute: GetEnvInt("CREATE_RATE_PER_MINUTE", 60),
			AllowedOrigins:      SplitCSV(GetEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		Kafka: KafkaConfig{
			Brokers:  SplitCSV(GetEnv("KAFKA_BROKERS", "")),
			Topic:    GetEnv("KAFKA_LINK_TOPIC", "links.created"),
			ClientID: GetEnv("KAFKA_CLIENT_ID", DefaultWorkerID("shortlink")),
			GroupID:  GetEnv("KAFKA_LINK_GROUP_ID", "shortlink-watch"),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !validation.IsHTTPURL(c.API.GraphQLBaseURL) {
		return fmt.Errorf("%w: GRAPHQL_API_BASE_URL must be an http(s) URL (got %q)", ErrInvalidConfig, c.API.GraphQLBaseURL)
	}
	if !validation.IsHTTPURL(c.API.HTTPBaseURL) {
		return fmt.Errorf("%w: HTTP_API_BASE_URL must be an http(s) URL (got %q)", ErrInvalidConfig, c.API.HTTPBaseURL)
	}
	if c.pointsAtSelf(c.API.GraphQLBaseURL) {
		return fmt.Errorf("%w: GRAPHQL_API_BASE_URL %q targets this gateway (APP_PORT=%s)", ErrInvalidConfig, c.API.GraphQLBaseURL, c.Server.Port)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: GRAPHQL_TIMEOUT must be > 0", ErrInvalidConfig)
	}
	if c.Breaker.MaxFailures <= 0 {
		return fmt.Errorf("%w: GRAPHQL_BREAKER_MAX_FAILURES must be > 0 (got %d)", ErrInvalidConfig, c.Breaker.MaxFailures)
	}
	if c.Security.CreateRatePerMinute < 0 {
		return fmt.Errorf("%w: CREATE_RATE_PER_MINUTE must be >= 0 (got %d)", ErrInvalidConfig, c.Security.CreateRatePerMinute)
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.Topic) == "" {
		return fmt.Errorf("%w: KAFKA_LINK_TOPIC must not be empty when KAFKA_BROKERS is set", ErrInvalidConfig)
	}
	return nil
}

// pointsAtSelf reports whether raw is a loopback URL on the gateway's own port.
func (c *Config) pointsAtSelf(raw string) bool {
	if c.Server.Port == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	port := u.Port()
	if port == "" {
		port = map[string]string{"http": "80", "https": "443"}[u.Scheme]
	}
	if port != c.Server.Port {
		return false
	}
	switch host := u.Hostname(); host {
	case "localhost", "0.0.0.0", "::":
		return true
	default:
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
