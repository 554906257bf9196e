package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/salesview-lab/salesview/internal/config"
	"github.com/salesview-lab/salesview/internal/core/query"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/core/storage/memory"
	"github.com/salesview-lab/salesview/internal/core/storage/postgres"
	"github.com/salesview-lab/salesview/internal/ingestion"
	"github.com/salesview-lab/salesview/internal/migrations"
	"github.com/salesview-lab/salesview/internal/normalize"
	"github.com/salesview-lab/salesview/internal/projection"
	"github.com/salesview-lab/salesview/internal/server"
	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (YAML)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"addr", cfg.Server.Addr(),
		"mode", cfg.Server.Mode,
		"store", cfg.Database.Type,
		"timezone", cfg.Query.Timezone)

	loc, err := cfg.Query.Location()
	if err != nil {
		slog.Error("Invalid query timezone", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage
	var (
		store  storage.SalesStore
		health server.HealthChecker
	)
	switch cfg.Database.Type {
	case "memory":
		slog.Warn("Using in-memory store: data is lost on restart")
		store = memory.NewSalesStore()
	default:
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		// 2.1. Run Database Migrations
		if err := migrations.Run(db, cfg.Database.AutoMigrate); err != nil {
			db.Close()
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}

		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			db.Close()
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer adapter.Close()

		store = adapter
		health = adapter
	}

	// 3. Initialize Normalizer
	aliases, err := normalize.LoadAliases(cfg.Ingest.AliasesFile)
	if err != nil {
		slog.Error("Failed to load field aliases", "error", err)
		os.Exit(1)
	}
	normalizer := normalize.NewNormalizer(aliases, loc)

	// 4. Initialize Ingestion (bulk import + single insert)
	ingestionSvc := ingestion.NewService(store, normalizer, ingestion.BatchSizes{
		CSV:  cfg.Ingest.CSVBatchSize,
		JSON: cfg.Ingest.JSONBatchSize,
	}, cfg.Server.MaxBodySizeMB)

	// 5. Initialize Projection (query API)
	builder := query.NewBuilder(loc, cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
	projectionSvc := projection.NewService(store, builder)

	// 6. Initialize Server
	srv := server.New(cfg.Server.Addr(), health, cfg.Server.Mode, cfg.Server.Origins())
	api := srv.API()
	ingestionSvc.RegisterRoutes(api)
	projectionSvc.RegisterRoutes(api)

	// 7. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}
