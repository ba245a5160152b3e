package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lib/pq"
	"github.com/snap-point/fieldtrack/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type DatabaseConfig struct {
	Driver string // sqlite | postgres
	DSN    string
}

func GetDatabaseConfig() DatabaseConfig {
	driver := getEnv("DB_DRIVER", "sqlite")
	dsn := os.Getenv("DATABASE_URL")

	if driver == "postgres" && dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"), getEnv("DB_PORT", "5432"))
	}
	if driver == "sqlite" && dsn == "" {
		// Shared in-memory database: uploads vanish when the process exits.
		dsn = "file:fieldtrack?mode=memory&cache=shared"
	}

	return DatabaseConfig{Driver: driver, DSN: dsn}
}

// ConnectDatabase opens the configured database without migrating it.
func ConnectDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := cfg.DSN
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			converted, err := pq.ParseURL(dsn)
			if err != nil {
				return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
			}
			dsn = converted
		}
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// A second connection would open a second in-memory database.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func InitDB(cfg DatabaseConfig) *gorm.DB {
	db, err := ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Printf("Database ready (driver=%s)", cfg.Driver)
	return db
}
