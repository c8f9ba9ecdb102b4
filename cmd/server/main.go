// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JayAllanBaker/KingsCorner/internal/auth"
	"github.com/JayAllanBaker/KingsCorner/internal/cache"
	"github.com/JayAllanBaker/KingsCorner/internal/config"
	"github.com/JayAllanBaker/KingsCorner/internal/database"
	"github.com/JayAllanBaker/KingsCorner/internal/server"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	auth.Init(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.Init(ctx, cfg.DatabaseURL); err != nil {
			logrus.Fatalf("database init: %v", err)
		}
		defer database.Close()
	} else {
		logrus.Warn("DATABASE_URL not set; running without persistence")
	}

	if cfg.RedisAddr != "" {
		if err := cache.Init(ctx, cfg.RedisAddr); err != nil {
			logrus.Fatalf("redis init: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set; action history disabled")
	}

	srv := server.New(cfg)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logrus.Infof("Listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
}
