package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"yatube/internal/api"
	"yatube/internal/auth"
	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/media"
	"yatube/internal/metrics"
	"yatube/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger, logCloser, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.LogstashAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialise logger")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	issuer := auth.NewJWTIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authn := auth.NewAuthenticator(st, issuer, cfg.Auth.SecretKey, cfg.Auth.SessionMaxAge)
	files := &media.Storage{Root: cfg.Media.Root, URL: cfg.Media.URL}

	a := api.New(st, authn, files, m, logger, cfg.Server.SlowRequestThreshold)
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      a.Routes(cfg.Server.APIPrefix, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	logger.WithField("addr", srv.Addr).Info("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}
