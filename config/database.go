package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDatabase opens the sqlite database file and performs automatic migrations.
// The whole site persists into a single file so the backup sync can mirror it
// wholesale to object storage.
func InitDatabase(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create database directory: %v", err)
		}
	}

	d, err := OpenDatabase(cfg.DBPath, modelDefs...)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	db = d
	return db
}

// OpenDatabase opens an arbitrary sqlite file and migrates the given models.
// Split out from InitDatabase so tests can open throwaway databases.
func OpenDatabase(path string, modelDefs ...interface{}) (*gorm.DB, error) {
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(Get().LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gLogger})
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; serialize access through one connection
	// instead of hitting SQLITE_BUSY under concurrent requests.
	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if len(modelDefs) > 0 {
		if err := d.AutoMigrate(modelDefs...); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to the initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}
