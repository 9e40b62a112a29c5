package app

import (
	"net/http"

	"cerven-ot/internal/config"
	"cerven-ot/internal/middleware"
	"cerven-ot/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API holds what cmd/api needs to close on shutdown.
type API struct {
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

func (a *API) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Redis.Close()
}

func BuildApp(cfg config.Config, logger *zap.Logger) (*API, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	if err := registerModules(router, cfg, sqlDB, gormDB, redisClient, logger); err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, err
	}

	return &API{Router: router, DB: gormDB, Redis: redisClient}, nil
}
