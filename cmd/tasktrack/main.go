package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasktrack/internal/auth"
	"tasktrack/internal/config"
	"tasktrack/internal/notify"
	"tasktrack/internal/server"
	"tasktrack/internal/service"
	"tasktrack/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	addrFlag := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbFlag := flag.String("db", cfg.DBPath, "Path to sqlite database file")
	staticFlag := flag.String("static", cfg.StaticDir, "Directory with built frontend")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	logger.Info("starting "+cfg.AppName, slog.String("db", *dbFlag))
	if cfg.SecretKey == "change-me" {
		logger.Warn("SECRET_KEY is using the default value; set it before exposing the server")
	}

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	tokens, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.Algorithm, cfg.TokenTTL)
	if err != nil {
		logger.Error("unable to configure tokens", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := notify.NewRegistry(logger)
	srv := server.New(
		service.NewAuthService(store, tokens, logger),
		service.NewTaskService(store, registry, logger),
		registry,
		logger,
		server.Options{
			StaticDir:    *staticFlag,
			AllowOrigins: cfg.AllowOrigins,
			WriteTimeout: cfg.WriteTimeout,
		},
	)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
