package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvDBDriver          = "DB_DRIVER"
	EnvSQLitePath        = "SQLITE_PATH"
	EnvPostgresDSN       = "POSTGRES_DSN"
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvWhatsAppOwnerPhone = "WHATSAPP_OWNER_PHONE"
	EnvDailyCapacity      = "DAILY_CAPACITY"
	EnvStaticDir          = "STATIC_DIR"

	EnvKafkaBrokers        = "KAFKA_BROKERS"
	EnvKafkaTopic          = "KAFKA_TOPIC"
	EnvKafkaBatchTimeout   = "KAFKA_BATCH_TIMEOUT"
	EnvKafkaCompression    = "KAFKA_COMPRESSION"
	EnvKafkaRequiredAcks   = "KAFKA_REQUIRED_ACKS"
	EnvKafkaMaxAttempts    = "KAFKA_MAX_ATTEMPTS"
	EnvKafkaPublishTimeout = "KAFKA_PUBLISH_TIMEOUT"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
