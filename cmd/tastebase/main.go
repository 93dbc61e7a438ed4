package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tastebase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := tastebase.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := tastebase.NewProductionZapLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics := tastebase.NewPrometheusMetrics(nil)

	rdb := tastebase.SharedClient()
	defer func() { _ = rdb.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("connect redis: %v", err)
	}

	restaurants := tastebase.NewRestaurantServiceWithObservability(rdb, logger, metrics)
	restaurants.SetDedupFilter(tastebase.NewBloomDedup(rdb))
	if err := restaurants.EnsureSearchIndex(ctx); err != nil {
		// Search stays unavailable without the RediSearch module; every other
		// route still works.
		logger.Warn("search index unavailable", "error", err)
	}

	cuisines := tastebase.NewCuisineService(rdb, logger)

	weatherClient, err := tastebase.NewOpenWeatherClient(
		cfg.WeatherBaseURL,
		cfg.WeatherAPIKey,
		cfg.WeatherUnits,
		time.Duration(cfg.WeatherTimeoutSecs)*time.Second,
		logger,
	)
	if err != nil {
		log.Fatalf("init weather client: %v", err)
	}
	weather := tastebase.NewWeatherService(rdb, weatherClient, logger, metrics)

	server := tastebase.NewServer(cfg, rdb, restaurants, cuisines, weather, logger, metrics)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown error", "error", err)
	}
}
