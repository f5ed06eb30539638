package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	Teller     TellerConfig
	SnapTrade  SnapTradeConfig
	MarketData MarketDataConfig
	Polling    PollingConfig
	Scheduler  SchedulerConfig
	TLS        TLSConfig
	Firebase   FirebaseConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type EncryptionConfig struct {
	Key string
}

// TellerConfig holds Teller.io API settings. Teller authenticates API calls
// with a client certificate issued per application.
type TellerConfig struct {
	BaseURL       string
	ApplicationID string
	Environment   string // sandbox | development | production
	CertPath      string
	KeyPath       string
}

type SnapTradeConfig struct {
	BaseURL     string
	ClientID    string
	ConsumerKey string
}

// MarketDataConfig configures the quote aggregation service and the
// upstream provider credentials.
type MarketDataConfig struct {
	QuoteTTL        time.Duration
	CandleCacheTTL  time.Duration
	PolygonAPIKey   string
	AlpacaKeyID     string
	AlpacaSecretKey string
	AlphaVantageKey string
}

// PollingConfig configures the fixed-interval status polling used by the
// payment and trade flows.
type PollingConfig struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	quoteTTL, err := time.ParseDuration(getEnv("MARKET_DATA_QUOTE_TTL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_DATA_QUOTE_TTL: %w", err)
	}
	candleTTL, err := time.ParseDuration(getEnv("MARKET_DATA_CANDLE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_DATA_CANDLE_TTL: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	pollAttempts, err := strconv.Atoi(getEnv("POLL_MAX_ATTEMPTS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_MAX_ATTEMPTS: %w", err)
	}
	pollTimeout, err := time.ParseDuration(getEnv("POLL_TIMEOUT", "90s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_TIMEOUT: %w", err)
	}

	// Parse scheduler configuration
	schedulerEnabled := getBoolEnv("SCHEDULER_ENABLED", true)
	schedulerTimes := strings.Split(getEnv("SCHEDULER_TIMES", "06:00,12:00,18:00"), ",")
	schedulerWorkers, err := strconv.Atoi(getEnv("SCHEDULER_WORKERS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	schedulerQueueSize, err := strconv.Atoi(getEnv("SCHEDULER_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}
	schedulerRunOnStartup := getBoolEnv("SCHEDULER_RUN_ON_STARTUP", false)

	// Parse allowed hosts (comma-separated list)
	allowedHostsStr := getEnv("ALLOWED_HOSTS", "")
	var allowedHosts []string
	if allowedHostsStr != "" {
		for _, host := range strings.Split(allowedHostsStr, ",") {
			host = strings.TrimSpace(host)
			if host != "" {
				allowedHosts = append(allowedHosts, host)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: allowedHosts,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "flint"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "flint"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Teller: TellerConfig{
			BaseURL:       getEnv("TELLER_BASE_URL", "https://api.teller.io"),
			ApplicationID: getEnv("TELLER_APPLICATION_ID", ""),
			Environment:   getEnv("TELLER_ENVIRONMENT", "sandbox"),
			CertPath:      getEnv("TELLER_CERT_PATH", ""),
			KeyPath:       getEnv("TELLER_KEY_PATH", ""),
		},
		SnapTrade: SnapTradeConfig{
			BaseURL:     getEnv("SNAPTRADE_BASE_URL", "https://api.snaptrade.com/api/v1"),
			ClientID:    getEnv("SNAPTRADE_CLIENT_ID", ""),
			ConsumerKey: getEnv("SNAPTRADE_CONSUMER_KEY", ""),
		},
		MarketData: MarketDataConfig{
			QuoteTTL:        quoteTTL,
			CandleCacheTTL:  candleTTL,
			PolygonAPIKey:   getEnv("POLYGON_API_KEY", ""),
			AlpacaKeyID:     getEnv("ALPACA_KEY_ID", ""),
			AlpacaSecretKey: getEnv("ALPACA_SECRET_KEY", ""),
			AlphaVantageKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		},
		Polling: PollingConfig{
			Interval:    pollInterval,
			MaxAttempts: pollAttempts,
			Timeout:     pollTimeout,
		},
		Scheduler: SchedulerConfig{
			Enabled:       schedulerEnabled,
			ScheduleTimes: schedulerTimes,
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  schedulerRunOnStartup,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "flint-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Encryption.Key == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(cfg.Encryption.Key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
