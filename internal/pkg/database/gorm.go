package database

import (
	"Viewpoint/internal/api/config"
	"Viewpoint/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dsnCfg, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.New(mysql.Config{DSNConfig: dsnCfg}), &gorm.Config{
		Logger:      logger.NewGormLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	log.Info("Database connection established successfully.", "addr", dsnCfg.Addr, "db", dsnCfg.DBName)
	return db, nil
}

// normalizeDSN 时间列需要解析为 time.Time，统一按 UTC 存取
func normalizeDSN(dsn string) (*driver.Config, error) {
	dsnCfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}
	dsnCfg.ParseTime = true
	if dsnCfg.Loc == nil || dsnCfg.Loc == time.Local {
		dsnCfg.Loc = time.UTC
	}
	return dsnCfg, nil
}
