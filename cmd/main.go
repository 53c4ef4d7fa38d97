package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"churnpredict/artifact"
	"churnpredict/churn"
	"churnpredict/config"
	qhttp "churnpredict/http"
	"churnpredict/logger"
	"churnpredict/monitoring"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("exiting", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	metrics := monitoring.NewMetrics()

	svc, err := newService(cfg, log, metrics)
	if err != nil {
		return err
	}

	if cfg.Artifacts.Preload {
		// A failed warm-up is not fatal; the first request retries the load.
		if err := svc.Warm(context.Background()); err != nil {
			log.Warn("artifact preload failed", zap.Error(err))
		}
	}

	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        cfg.HTTP.Timeout,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, svc, metrics, log.Named("http"))

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(ctx)
}

func newService(cfg *config.Config, log *zap.Logger, metrics *monitoring.Metrics) (*churn.Service, error) {
	fetcher := artifact.NewSourceFetcher(cfg.Artifacts.FetchTimeout, cfg.Artifacts.MaxBytes, metrics)
	loader, err := artifact.NewLoader(fetcher, cfg.Artifacts.CacheSize, log.Named("artifact"), metrics)
	if err != nil {
		return nil, err
	}
	return churn.NewService(loader, churn.ServiceConfig{
		Locators: artifact.Locators{
			Scaler: cfg.Artifacts.Scaler,
			Model:  cfg.Artifacts.Model,
		},
		PositiveClass: cfg.Model.PositiveClass,
	}, log.Named("churn"), metrics), nil
}
