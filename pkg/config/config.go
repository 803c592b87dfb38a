package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"motoagenda/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver          string
	SQLitePath        string
	PostgresDSN       string
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	WhatsAppOwnerPhone string
	DailyCapacity      int
	StaticDir          string

	KafkaBrokers        []string
	KafkaTopic          string
	KafkaBatchTimeout   time.Duration
	KafkaCompression    string
	KafkaRequiredAcks   int
	KafkaMaxAttempts    int
	KafkaPublishTimeout time.Duration

	CORSAllowedOrigins []string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustedProxies    []string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables always win over it.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		DBDriver:          strings.ToLower(getEnvStr(EnvDBDriver, DefaultDBDriver)),
		SQLitePath:        getEnvStr(EnvSQLitePath, DefaultSQLitePath),
		PostgresDSN:       getEnvStr(EnvPostgresDSN, ""),
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		WhatsAppOwnerPhone: getEnvStr(EnvWhatsAppOwnerPhone, DefaultWhatsAppOwnerPhone),
		DailyCapacity:      getEnvNum(EnvDailyCapacity, DefaultDailyCapacity),
		StaticDir:          getEnvStr(EnvStaticDir, DefaultStaticDir),

		KafkaBrokers:        getEnvList(EnvKafkaBrokers, ""),
		KafkaTopic:          getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaBatchTimeout:   getEnvDuration(EnvKafkaBatchTimeout, DefaultKafkaBatchTimeout),
		KafkaCompression:    strings.ToLower(getEnvStr(EnvKafkaCompression, DefaultKafkaCompression)),
		KafkaRequiredAcks:   getEnvNum(EnvKafkaRequiredAcks, DefaultKafkaRequiredAcks),
		KafkaMaxAttempts:    getEnvNum(EnvKafkaMaxAttempts, DefaultKafkaMaxAttempts),
		KafkaPublishTimeout: getEnvDuration(EnvKafkaPublishTimeout, DefaultKafkaPublishTimeout),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		TrustedProxies:    getEnvList(EnvTrustedProxies, ""),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errors = append(errors, "SQLitePath cannot be empty when DB_DRIVER=sqlite")
		}
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			errors = append(errors, "PostgresDSN cannot be empty when DB_DRIVER=postgres")
		}
	case DriverMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("DBDriver must be one of sqlite, postgres, mongo, got: %s", cfg.DBDriver))
	}

	if cfg.WhatsAppOwnerPhone == "" {
		errors = append(errors, "WhatsAppOwnerPhone cannot be empty")
	}
	if cfg.DailyCapacity <= 0 {
		errors = append(errors, fmt.Sprintf("DailyCapacity must be positive, got: %d", cfg.DailyCapacity))
	}
	if cfg.KafkaEnabled() {
		if cfg.KafkaTopic == "" {
			errors = append(errors, "KafkaTopic cannot be empty when KAFKA_BROKERS is set")
		}
		switch cfg.KafkaCompression {
		case "none", "gzip", "snappy", "lz4", "zstd":
		default:
			errors = append(errors, fmt.Sprintf("KafkaCompression must be one of none, gzip, snappy, lz4, zstd, got: %s", cfg.KafkaCompression))
		}
		if cfg.KafkaRequiredAcks < -1 || cfg.KafkaRequiredAcks > 1 {
			errors = append(errors, fmt.Sprintf("KafkaRequiredAcks must be -1, 0 or 1, got: %d", cfg.KafkaRequiredAcks))
		}
		if cfg.KafkaMaxAttempts <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaMaxAttempts must be positive, got: %d", cfg.KafkaMaxAttempts))
		}
		if cfg.KafkaPublishTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaPublishTimeout must be positive, got: %s", cfg.KafkaPublishTimeout))
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		errors = append(errors, "CORSAllowedOrigins cannot be empty")
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	for _, proxy := range cfg.TrustedProxies {
		if _, _, err := net.ParseCIDR(proxy); err != nil && net.ParseIP(proxy) == nil {
			errors = append(errors, fmt.Sprintf("TrustedProxies entries must be IPs or CIDR blocks, got: %s", proxy))
		}
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"sqlite_path", cfg.SQLitePath,
		"postgres_dsn", redactURI(cfg.PostgresDSN),
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"daily_capacity", cfg.DailyCapacity,
		"static_dir", cfg.StaticDir,
		"kafka_enabled", cfg.KafkaEnabled(),
		"kafka_topic", cfg.KafkaTopic,
		"kafka_compression", cfg.KafkaCompression,
		"kafka_required_acks", cfg.KafkaRequiredAcks,
		"kafka_publish_timeout", cfg.KafkaPublishTimeout,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"trusted_proxies", cfg.TrustedProxies,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

var credentialRegex = regexp.MustCompile(`(://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
