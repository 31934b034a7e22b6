package config

import (
	"os"
	"strconv"
)

type EnvConfig struct {
	Server struct {
		Port string
	}
	Postgres struct {
		Host     string
		Database string
		Username string
		Password string
		Port     string
		// DSN overrides the individual fields when set. A non-postgres DSN
		// (plain file path) selects the SQLite fallback for local development.
		DSN string
	}
	CORS struct {
		AllowDomains string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		Database int
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint     string
		RootUser     string
		RootPassword string
		Bucket       string
		UseSSL       bool
	}
	SignedURL struct {
		TTLSeconds int
	}
	Reconcile struct {
		StaleAfterSeconds int
		SweepIntervalSec  int
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	config.Server.Port = os.Getenv("SERVER_PORT")
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	// Postgres
	config.Postgres.Host = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}
	config.Postgres.DSN = os.Getenv("DATABASE_DSN")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Redis
	config.Redis.Host = os.Getenv("REDIS_HOST")
	config.Redis.Port = os.Getenv("REDIS_PORT")
	if config.Redis.Port == "" {
		config.Redis.Port = "6379"
	}
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	// MinIO
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "photos"
	}
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	config.SignedURL.TTLSeconds, _ = strconv.Atoi(os.Getenv("SIGNED_URL_TTL"))
	if config.SignedURL.TTLSeconds == 0 {
		config.SignedURL.TTLSeconds = 3600
	}

	config.Reconcile.StaleAfterSeconds, _ = strconv.Atoi(os.Getenv("RECONCILE_STALE_AFTER"))
	if config.Reconcile.StaleAfterSeconds == 0 {
		config.Reconcile.StaleAfterSeconds = 600
	}
	config.Reconcile.SweepIntervalSec, _ = strconv.Atoi(os.Getenv("RECONCILE_SWEEP_INTERVAL"))
	if config.Reconcile.SweepIntervalSec == 0 {
		config.Reconcile.SweepIntervalSec = 300
	}

	config.Grafana.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	config.Grafana.ServiceName = os.Getenv("OTLP_SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "photokeep"
	}

	config.Environment.Mode = os.Getenv("ENVIRONMENT_MODE")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	return &config
}
