package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salesview.yaml")
	requireNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Server.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Query.DefaultLimit != 10 || cfg.Query.MaxLimit != 100 {
		t.Fatalf("unexpected page limits %d/%d", cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
	}
	if cfg.Ingest.CSVBatchSize != 500 || cfg.Ingest.JSONBatchSize != 1000 {
		t.Fatalf("unexpected batch sizes %d/%d", cfg.Ingest.CSVBatchSize, cfg.Ingest.JSONBatchSize)
	}
	if got := cfg.Server.Origins(); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard CORS origin, got %v", got)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  port: 8080
  host: "127.0.0.1"
  mode: "debug"
  cors_origins: "http://localhost:3000, https://sales.example.com"
database:
  type: "memory"
query:
  timezone: "UTC"
  max_limit: 50
`)
	t.Setenv("SALESVIEW_SERVER__PORT", "9090")
	t.Setenv("SALESVIEW_INGEST__CSV_BATCH_SIZE", "250")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected env to override port, got %d", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Database.Type != "memory" {
		t.Fatalf("expected memory store, got %s", cfg.Database.Type)
	}
	if cfg.Ingest.CSVBatchSize != 250 {
		t.Fatalf("expected csv batch size 250, got %d", cfg.Ingest.CSVBatchSize)
	}
	if got := cfg.Server.Origins(); len(got) != 2 || got[1] != "https://sales.example.com" {
		t.Fatalf("unexpected origins %v", got)
	}
	loc, err := cfg.Query.Location()
	requireNoError(t, err)
	if loc != time.UTC {
		t.Fatalf("expected UTC, got %s", loc)
	}
}

func TestLoad_InvalidSettingsFailStartup(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "port out of range",
			yaml:    "server:\n  port: -1\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "unknown database type",
			yaml:    "database:\n  type: \"mongo\"\n",
			wantErr: "unsupported database.type",
		},
		{
			name:    "default limit above max",
			yaml:    "query:\n  default_limit: 200\n  max_limit: 100\n",
			wantErr: "query.max_limit",
		},
		{
			name:    "unknown timezone",
			yaml:    "query:\n  timezone: \"Mars/Olympus_Mons\"\n",
			wantErr: "invalid query.timezone",
		},
		{
			name:    "zero batch size",
			yaml:    "ingest:\n  json_batch_size: 0\n",
			wantErr: "ingest.json_batch_size",
		},
		{
			name:    "missing aliases file",
			yaml:    "ingest:\n  aliases_file: \"/nonexistent/aliases.yaml\"\n",
			wantErr: "ingest.aliases_file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("expected file load error, got %v", err)
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
