package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstand/internal/cache"
	cacheredis "bookstand/internal/cache/redis"
	"bookstand/internal/catalog"
	"bookstand/internal/config"
	"bookstand/internal/events"
	eventsconfig "bookstand/internal/events/config"
	eventsmemory "bookstand/internal/events/memory"
	eventsnats "bookstand/internal/events/nats"
	"bookstand/internal/health"
	"bookstand/internal/logging"
	"bookstand/internal/search"
	"bookstand/internal/search/elastic"
	"bookstand/internal/storage/mongo"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// 2. Logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Shutdown()
	logger := slog.Default()

	// 3. Document store. The store is authoritative: failing to reach it
	// is fatal, unlike every accelerant below.
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.Storage.ConnectTimeout.Std())
	provider, err := mongo.NewProvider(connectCtx, cfg.Storage)
	cancel()
	if err != nil {
		logger.Error("Failed to connect to document store", "uri", cfg.Storage.URI, "error", err)
		os.Exit(1)
	}
	store := mongo.NewDocumentStore(provider)
	logger.Info("Document store connected", "database", cfg.Storage.Database)

	mon := health.NewMonitor(logger, cfg.Search.ProbeTimeout.Std())

	// 4. Cache, optional. A failed connection leaves the backend marked
	// unavailable; the watchdog recovers it if Redis comes back.
	var cacheClient cache.Cache = cache.NoOp{}
	if cfg.Cache.Enabled {
		c, err := cacheredis.New(context.Background(), cfg.Cache, mon, logger)
		if err != nil {
			logger.Warn("Cache unavailable at startup", "addr", cfg.Cache.Addr, "error", err)
		}
		cacheClient = c
		defer c.Close()
	}

	// 5. Search index, optional. Availability is decided per request by
	// the synchronous probe, so a dead index at startup costs nothing.
	var index search.Index = search.NoOp{}
	if cfg.Search.Enabled {
		es, err := elastic.New(cfg.Search, catalog.SearchFields(), logger)
		if err != nil {
			logger.Warn("Search client unavailable, using store fallback", "error", err)
		} else {
			index = es
			defer es.Close()
		}
	}

	// 6. Change-event bus.
	var bus events.Bus
	switch cfg.Events.Backend {
	case eventsconfig.BackendNATS:
		bus, err = eventsnats.New(cfg.Events, logger)
		if err != nil {
			logger.Warn("Event bus unavailable, events stay in-process", "url", cfg.Events.URL, "error", err)
			bus = eventsmemory.New()
		}
	default:
		bus = eventsmemory.New()
	}
	defer bus.Close()

	// 7. Catalog service
	svc := catalog.New(catalog.Deps{
		Store:    store,
		Cache:    cacheClient,
		Index:    index,
		Health:   mon,
		Bus:      bus,
		Logger:   logger,
		CacheTTL: cfg.Cache.TTL.Std(),
	})
	logger.Info("Catalog service ready",
		"cache", cfg.Cache.Enabled,
		"search", cfg.Search.Enabled,
		"events", cfg.Events.Backend,
	)

	// Warm the listings and prove the read path end to end.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if books, err := svc.Books.List(warmCtx); err != nil {
		logger.Warn("Catalog warmup read failed", "error", err)
	} else {
		logger.Info("Catalog warmed", "books", len(books))
	}
	warmCancel()

	// 8. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("Store shutdown failed", "error", err)
	}
}
