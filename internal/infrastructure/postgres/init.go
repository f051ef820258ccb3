package postgres

import (
	"log"

	"github.com/LavaJover/shvark-exchange-service/internal/config"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-exchange-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func MustInitDB(cfg *config.ExchangeConfig) *gorm.DB {
	dsn := cfg.ExchangeDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v\n", err)
	}
	sqlDB.SetMaxOpenConns(cfg.ExchangeDB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.ExchangeDB.MaxIdleConns)

	// Миграции из файлов, если путь задан; иначе AutoMigrate
	if cfg.ExchangeDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.ExchangeDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v\n", err)
		}
		return db
	}

	if err := db.AutoMigrate(
		&models.BotModel{},
		&models.VerifiedUserModel{},
		&models.UserCounterModel{},
		&models.TransactionModel{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v\n", err)
	}

	return db
}
