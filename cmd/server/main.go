package main

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"FindIt/internal/config"
	"FindIt/internal/events"
	"FindIt/internal/handlers"
	"FindIt/internal/middleware"
	"FindIt/internal/repo"
	"FindIt/internal/service"
)

func main() {
	cfg := config.NewConfig()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "driver", cfg.DBDriver, "error", err)
	}
	store := repo.NewStore(gormDB)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQURL, sugar)
	}

	rdb := config.NewRedisClient(cfg)
	if rdb == nil && cfg.RedisAddr != "" {
		sugar.Warnw("redis unavailable, verify rate limit disabled", "addr", cfg.RedisAddr)
	}

	userService := service.NewUserService(store.Users())
	itemService := service.NewItemService(store.Items(), sugar)
	claimService := service.NewClaimService(store, publisher, sugar, service.ClaimConfig{
		CodeTTL:             cfg.HandoverCodeTTL,
		MaxAttempts:         cfg.HandoverMaxAttempts,
		MinVerificationText: cfg.MinVerificationText,
		RequireProof:        cfg.RequireProof,
	})

	h := handlers.NewHandler(userService, itemService, claimService, sugar, cfg, rdb)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DBDriver", cfg.DBDriver,
		"HandoverCodeTTL", cfg.HandoverCodeTTL,
		"HandoverMaxAttempts", cfg.HandoverMaxAttempts,
		"Redis", rdb != nil,
		"RabbitMQ", cfg.RabbitMQURL != "",
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

// newLogger: для debug dev-логгер с цветным выводом, иначе JSON нужного уровня.
func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
