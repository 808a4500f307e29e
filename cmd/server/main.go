package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"invoiceguard/internal/blacklist"
	"invoiceguard/internal/invoice/cache"
	"invoiceguard/internal/invoice/fetch"
	invoicehandler "invoiceguard/internal/invoice/handler"
	invoicemetrics "invoiceguard/internal/invoice/metrics"
	"invoiceguard/internal/invoice/pdftext"
	invoiceservice "invoiceguard/internal/invoice/service"
	"invoiceguard/internal/platform/config"
	"invoiceguard/internal/platform/httpserver"
	"invoiceguard/internal/platform/logger"
	"invoiceguard/internal/platform/metrics"
	"invoiceguard/internal/platform/redis"
	"invoiceguard/internal/screening"
	httptransport "invoiceguard/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.DefaultRegisterer
	platformMetrics := metrics.New(reg)

	// Blacklist and cache backend start concurrently.
	var (
		store      *blacklist.Store
		textCache  cache.TextCache
		closeCache = func() {}
	)
	startup, startupCtx := errgroup.WithContext(ctx)
	startup.Go(func() error {
		var err error
		store, err = blacklist.Load(cfg.Blacklist.File)
		return err
	})
	startup.Go(func() error {
		var err error
		textCache, closeCache, err = newTextCache(startupCtx, cfg, log)
		return err
	})
	err := startup.Wait()
	defer closeCache()
	if err != nil {
		return err
	}

	screener, err := screening.NewReady(store)
	if err != nil {
		return err
	}
	platformMetrics.SetBlacklistEntries(store.Len())
	log.Info("blacklist loaded", "file", cfg.Blacklist.File, "entries", store.Len())

	fetcher := fetch.New(
		fetch.WithHTTPClient(fetch.NewHTTPClient(cfg.Fetch.Timeout, cfg.Fetch.RetryMax)),
		fetch.WithResourceDir(cfg.Blacklist.ResourceDir),
		fetch.WithMaxBytes(cfg.Fetch.MaxPDFBytes),
	)
	invoices := invoiceservice.New(fetcher, pdftext.New(), screener,
		invoiceservice.WithTextCache(textCache),
		invoiceservice.WithMetrics(invoicemetrics.New(reg)),
		invoiceservice.WithLogger(log),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        platformMetrics,
		Readiness:      screener,
		MetricsHandler: promhttp.Handler(),
		RequestTimeout: cfg.RequestTimeout,
		Modules:        []httptransport.Module{invoicehandler.New(invoices, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting invoiceguard", "addr", cfg.Addr)
	return httpserver.Run(ctx, srv)
}

// newTextCache prefers Redis when REDIS_URL is set and falls back to an
// in-process cache otherwise.
func newTextCache(ctx context.Context, cfg config.Server, log *slog.Logger) (cache.TextCache, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, func() {}, err
	}
	if client == nil {
		log.Info("using in-memory text cache", "ttl", cfg.Fetch.TextCacheTTL)
		return cache.NewMemory(cfg.Fetch.TextCacheTTL), func() {}, nil
	}
	log.Info("using redis text cache", "ttl", cfg.Fetch.TextCacheTTL)
	return cache.NewRedis(client.Client, cfg.Fetch.TextCacheTTL), func() {
		if err := client.Close(); err != nil {
			log.Warn("closing redis client", "error", err)
		}
	}, nil
}
