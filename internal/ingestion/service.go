package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/salesview-lab/salesview/internal/core/storage"
	"github.com/salesview-lab/salesview/internal/normalize"
)

var (
	// ErrFileNotFound is returned by ImportFile when the path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for extensions other than .csv, .json and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// BatchSizes sets the insert batch capacity per source format.
type BatchSizes struct {
	CSV  int
	JSON int
}

type Service struct {
	store            storage.SalesWriter
	normalizer       *normalize.Normalizer
	batches          BatchSizes
	maxBodySizeBytes int
}

func NewService(store storage.SalesWriter, normalizer *normalize.Normalizer, batches BatchSizes, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if normalizer == nil {
		panic("ingestion: normalizer must not be nil")
	}
	if batches.CSV <= 0 {
		batches.CSV = DefaultCSVBatchSize
	}
	if batches.JSON <= 0 {
		batches.JSON = DefaultJSONBatchSize
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		normalizer:       normalizer,
		batches:          batches,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the write endpoints under the given group.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/sales", s.CreateHandler)
	r.POST("/sales/import", s.ImportHandler)
}

// ImportFile loads a CSV, JSON or XLSX file. onBatch may be nil.
func (s *Service) ImportFile(ctx context.Context, path string, onBatch func(storage.BatchResult, Report)) (Report, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Report{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Report{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	loader := &Loader{
		Store:      s.store,
		Normalizer: s.normalizer,
		OnBatch:    onBatch,
	}

	var rows RowReader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		slog.Info("[Import] Reading CSV file (streaming mode)", "path", path)
		csvRows, err := NewCSVReader(f)
		if err != nil {
			return Report{}, err
		}
		rows = csvRows
		loader.BatchSize = s.batches.CSV
	case ".json":
		slog.Info("[Import] Reading JSON file (streaming mode)", "path", path)
		rows = NewJSONArrayReader(f)
		loader.BatchSize = s.batches.JSON
	case ".xlsx":
		slog.Info("[Import] Reading XLSX file (streaming mode)", "path", path)
		xlsxRows, err := NewXLSXReader(f)
		if err != nil {
			return Report{}, err
		}
		defer xlsxRows.Close()
		rows = xlsxRows
		loader.BatchSize = s.batches.CSV
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	return loader.Load(ctx, rows)
}
