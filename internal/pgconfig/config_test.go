package pgconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgbtree.yaml")
	yaml := "btree:\n  order: 64\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Btree.Order)
	require.Equal(t, "debug", cfg.Logging.Level)
	// unspecified keys keep their defaults
	require.Equal(t, true, cfg.Btree.EnableCompression)
	require.Equal(t, 0.9, cfg.Btree.EstimatedAcceptanceRatio)
}

func TestLoad_RejectsInvalidOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgbtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("btree:\n  order: 2\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
