package main

import (
	"time"

	"cerven-ot/internal/app"
	"cerven-ot/internal/bootstrap"
	"cerven-ot/internal/config"
	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/telemetry"

	"go.uber.org/zap"
)

const serviceName = "cerven-ot-api"

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}
	if cfg.IsProduction() {
		if prod, err := zap.NewProduction(); err == nil {
			logger = prod
			zap.ReplaceGlobals(logger)
		}
	}

	apperror.Init()
	shutdownTracing := telemetry.Setup(serviceName, cfg.OTELEndpoint, cfg.OTELInsecure)

	api, err := app.BuildApp(cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer api.Close()

	bootstrap.StartHTTPServer(
		api.Router,
		bootstrap.ServerConfig{
			ServiceName:  serviceName,
			Port:         cfg.Port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		bootstrap.NewStdoutAuditLogger(logger),
		shutdownTracing,
	)
}
