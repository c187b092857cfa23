package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arcanum/internal/config"
	"arcanum/internal/database"
	"arcanum/internal/kvstore"
	"arcanum/internal/llm/client"
	"arcanum/internal/llm/imagegen"
	"arcanum/internal/logger"
	"arcanum/internal/server"
	"arcanum/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel(),
		Format:      cfg.LogFormat(),
		Development: cfg.LogDevelopment(),
	})
	defer log.Sync()

	kv := newKVStore(cfg, log)

	var db *gorm.DB
	if cfg.StoreConfigured() {
		opened, err := database.Init(database.Config{Path: cfg.DatabasePath()})
		if err != nil {
			// The app still works without persistence; listings stay empty.
			log.Warn("database unavailable, running without persistence", zap.Error(err))
		} else {
			db = opened
		}
	} else {
		log.Info("item store not configured, persistence disabled")
	}

	var text client.TextGenerator
	if cfg.GenerationConfigured() {
		llm, err := client.New(context.Background(), client.Config{
			Provider: cfg.LLMProvider(),
			APIKey:   cfg.LLMAPIKey(),
			Model:    cfg.LLMModel(),
		}, log)
		if err != nil {
			log.Error("failed to create text generation client", zap.Error(err))
		} else {
			text = llm
		}
	} else {
		log.Info("text generation not configured")
	}

	var images imagegen.ImageGenerator
	if cfg.ImageConfigured() {
		img, err := imagegen.New(context.Background(), cfg.ImageAPIKey(), cfg.ImageModel(), log)
		if err != nil {
			log.Warn("failed to create image generation client", zap.Error(err))
		} else {
			images = img
		}
	}

	svcs := services.NewServices(db, kv, text, images, cfg, log)

	srv := server.New(svcs, cfg.ServerPort(), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server failed", zap.Error(err))
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

// newKVStore prefers redis when an address is configured and falls back to the
// in-process store, which is enough for a single instance.
func newKVStore(cfg *config.Config, log *zap.Logger) kvstore.Store {
	if addr := cfg.RedisAddr(); addr != "" {
		kv, err := kvstore.NewRedis(addr, cfg.RedisPassword(), cfg.RedisDB())
		if err != nil {
			log.Warn("redis unavailable, using in-memory store", zap.Error(err))
			return kvstore.NewMemory()
		}
		log.Info("using redis key-value store", zap.String("addr", addr))
		return kv
	}
	return kvstore.NewMemory()
}
