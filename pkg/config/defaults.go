package config

import "time"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const (
	DefaultPort     = "3000"
	DefaultLogLevel = "info"

	DefaultDBDriver          = DriverSQLite
	DefaultSQLitePath        = "agendamentos.db"
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "agendamentos"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultWhatsAppOwnerPhone = "5521974438039"
	DefaultDailyCapacity      = 3
	DefaultStaticDir          = "public"

	DefaultKafkaTopic          = "appointments.created"
	DefaultKafkaBatchTimeout   = 10 * time.Millisecond
	DefaultKafkaCompression    = "snappy"
	DefaultKafkaRequiredAcks   = -1 // all in-sync replicas
	DefaultKafkaMaxAttempts    = 3
	DefaultKafkaPublishTimeout = 2 * time.Second

	DefaultCORSAllowedOrigins = "*"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
