package infra

import (
	"fmt"
	"strings"

	"github.com/tranqh/photokeep/config"
	"github.com/tranqh/photokeep/entity"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type PostgresClient struct {
	DB *gorm.DB
}

func InitPostgresClient(cfg *config.EnvConfig) *PostgresClient {
	dsn := cfg.Postgres.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Postgres.Host, cfg.Postgres.Username, cfg.Postgres.Password,
			cfg.Postgres.Database, cfg.Postgres.Port)
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.Postgres.DSN != "" && !strings.HasPrefix(dsn, "host=") &&
		!strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		// Plain file path DSN selects SQLite for local development.
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	} else {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := db.AutoMigrate(&entity.Folder{}, &entity.Photo{}, &entity.ReconcileTask{}); err != nil {
		panic(fmt.Sprintf("Failed to migrate database schema: %v", err))
	}

	return &PostgresClient{DB: db}
}

func (p *PostgresClient) Ping() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Ping()
}
