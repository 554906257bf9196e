package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/salesview-lab/salesview/internal/config"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/core/storage/memory"
	"github.com/salesview-lab/salesview/internal/core/storage/postgres"
	"github.com/salesview-lab/salesview/internal/ingestion"
	"github.com/salesview-lab/salesview/internal/migrations"
	"github.com/salesview-lab/salesview/internal/normalize"
	"github.com/spf13/cobra"
)

type importOptions struct {
	configPath string
	dryRun     bool
	batchSize  int
}

func newRootCmd() *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "salesimport <file>",
		Short: "Load sales records from a CSV, JSON or XLSX file",
		Long: `salesimport streams a sales file through the record normalizer and
inserts accepted rows in fixed-size batches.

Rows missing a customer id, customer name, product id or a parseable date are
skipped. A failed batch is reported and the import continues with the next one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (YAML)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "normalize and batch into an in-memory store; nothing is persisted")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "override the configured batch size for every format")

	return cmd
}

func runImport(cmd *cobra.Command, path string, opts *importOptions) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ingestion.ErrFileNotFound, path)
		}
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Query.Location()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg, opts.dryRun)
	if err != nil {
		return err
	}
	defer closeStore()

	aliases, err := normalize.LoadAliases(cfg.Ingest.AliasesFile)
	if err != nil {
		return err
	}

	batches := ingestion.BatchSizes{CSV: cfg.Ingest.CSVBatchSize, JSON: cfg.Ingest.JSONBatchSize}
	if opts.batchSize > 0 {
		batches = ingestion.BatchSizes{CSV: opts.batchSize, JSON: opts.batchSize}
	}
	svc := ingestion.NewService(store, normalize.NewNormalizer(aliases, loc), batches, cfg.Server.MaxBodySizeMB)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Importing %s\n", path)

	report, err := svc.ImportFile(cmd.Context(), path, func(res storage.BatchResult, progress ingestion.Report) {
		printBatch(out, res, progress)
	})
	renderReport(out, report)
	if err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	return nil
}

// openStore returns the write target and its release func.
func openStore(cfg *config.Config, dryRun bool) (storage.SalesWriter, func(), error) {
	if dryRun || cfg.Database.Type == "memory" {
		return memory.NewSalesStore(), func() {}, nil
	}

	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Run(db, cfg.Database.AutoMigrate); err != nil {
		db.Close()
		return nil, nil, err
	}
	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return adapter, func() {
		if err := adapter.Close(); err != nil {
			slog.Error("[Import] Failed to close store", "error", err)
		}
	}, nil
}
