package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rinkside/pickup-api/internal/api"
	"github.com/rinkside/pickup-api/internal/core/ports"
	"github.com/rinkside/pickup-api/internal/infrastructure/config"
	mongostore "github.com/rinkside/pickup-api/internal/infrastructure/db/mongo"
	redisstore "github.com/rinkside/pickup-api/internal/infrastructure/db/redis"
	"github.com/rinkside/pickup-api/internal/infrastructure/email"
	"github.com/rinkside/pickup-api/internal/infrastructure/queue"
	"github.com/rinkside/pickup-api/pkg/logger"
)

// @title           Pickup API
// @version         1.0
// @description     Authentication and session API for pickup game scheduling.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongostore.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	var delivery ports.EmailSender
	if cfg.SMTP.Enabled() {
		delivery = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		log.Warn().Msg("no SMTP host configured, emails will be logged instead of sent")
		delivery = email.NewLogSender(log)
	}
	dispatcher := queue.NewDispatcher(0, delivery, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(*cfg, db, rdb, dispatcher)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
