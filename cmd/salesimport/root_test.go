package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/salesview-lab/salesview/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImport_DryRunReportsCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "Customer ID,Customer Name,Product ID,Date,Quantity\n" +
		"C1,Jane,P1,2024-01-05,2\n" +
		"C2,Ravi,P2,2024-01-06,1\n" +
		"C3,,P3,2024-01-07,4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := runCmd(t, path, "--dry-run", "--batch-size", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "batch 1: inserted 1 (total 1)")
	assert.Contains(t, out, "batch 2: inserted 1 (total 2)")
	assert.Contains(t, out, "Import report")
	assert.Contains(t, out, "missing_customer_name")
}

func TestImport_FileNotFound(t *testing.T) {
	_, err := runCmd(t, filepath.Join(t.TempDir(), "missing.csv"), "--dry-run")
	require.ErrorIs(t, err, ingestion.ErrFileNotFound)
}

func TestImport_RequiresExactlyOneFile(t *testing.T) {
	_, err := runCmd(t)
	require.Error(t, err)
}

func TestImport_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := runCmd(t, path, "--dry-run")
	require.ErrorIs(t, err, ingestion.ErrUnsupportedFormat)
}
