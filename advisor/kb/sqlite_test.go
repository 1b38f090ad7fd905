package kb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_RoundTrip(t *testing.T) {
	dir := writeTestKB(t)
	manifest, entries, err := LoadDirRaw(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kb.db")
	require.NoError(t, SaveSQLite(ctx, dbPath, manifest, entries))

	loaded, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)

	want, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, want.Version(), loaded.Version())
	assert.Equal(t, len(want.Applications()), len(loaded.Applications()))
	assert.Equal(t, want.Clusters(), loaded.Clusters())
	assert.Equal(t, want.ParetoSet(0), loaded.ParetoSet(0))

	gemm, ok := loaded.Application("gemm")
	require.True(t, ok)
	assert.Equal(t, want.Applications()[0].Features, gemm.Features)

	assert.NoError(t, loaded.Validate())
}

func TestSQLite_SaveIsIdempotent(t *testing.T) {
	dir := writeTestKB(t)
	manifest, entries, err := LoadDirRaw(dir)
	require.NoError(t, err)

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kb.db")
	require.NoError(t, SaveSQLite(ctx, dbPath, manifest, entries))
	// Saving again replaces, not duplicates.
	require.NoError(t, SaveSQLite(ctx, dbPath, manifest, entries))

	loaded, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	assert.Len(t, loaded.ParetoSet(0), 2)
}

func TestOpenSQLite_MissingSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	_, err := OpenSQLite(context.Background(), dbPath)
	assert.Error(t, err)
}

func TestLoad_Dispatch(t *testing.T) {
	ctx := context.Background()

	dir := writeTestKB(t)
	s, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "test-1", s.Version())

	_, err = Load(ctx, filepath.Join(dir, ManifestName))
	assert.Error(t, err)

	_, err = Load(ctx, filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}
