// Package main is the swarmgate entry point: one authorizing reverse proxy
// instance, pinned to a single tenant, fronting the engine's local socket.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuroforgede/swarmgate/internal/config"
	"github.com/neuroforgede/swarmgate/internal/engineclient"
	"github.com/neuroforgede/swarmgate/internal/logging"
	"github.com/neuroforgede/swarmgate/internal/metrics"
	"github.com/neuroforgede/swarmgate/internal/ownership"
	"github.com/neuroforgede/swarmgate/internal/proxyrouter"
	"github.com/neuroforgede/swarmgate/internal/ratelimit"
	"github.com/neuroforgede/swarmgate/internal/registryauth"
	"github.com/neuroforgede/swarmgate/internal/specvalidate"
)

func main() {
	logger := logging.NewFromEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("swarmgate: invalid configuration")
	}

	m := metrics.New()
	engine := engineclient.New(cfg.EngineSocketPath)
	engine.SetMetrics(m)
	oracle := ownership.New(engine, cfg, m)
	validator := specvalidate.New(cfg, oracle, engine)
	validator.SetMetrics(m)
	regStore := registryauth.Load(cfg.RegistryAuthOverridesPath, logger)
	limiter := ratelimit.New(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	handler := proxyrouter.New(engine, oracle, validator, regStore, cfg, logger, m, limiter)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // streaming log/ping responses can run indefinitely
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"listen_addr": cfg.ListenAddr,
			"tenant":      cfg.TenantLabelValue,
		}).Info("swarmgate: listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("swarmgate: server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("swarmgate: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("swarmgate: shutdown error")
	}
}
