package infra

import (
	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/infra/produce"
)

type Infra struct {
	Postgres *PostgresClient
	Redis    *RedisClient
	RabbitMQ *RabbitMQClient
	Logger   *LoggerClient
	Minio    *MinioClient
	Produce  *produce.Produce
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	minio := InitMinioClient(cfg.EnvConfig)
	if minio == nil {
		panic("Failed to initialize MinIO service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	infraInstance = &Infra{
		Postgres: postgres,
		Redis:    redis,
		RabbitMQ: rabbitMQ,
		Logger:   logger,
		Minio:    minio,
		Produce:  produceService,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
