package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collective-hls/collective-hls/advisor"
)

func TestLoadFeaturesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- 12\n- 3.5\n- 0\n"), 0o644))

	features, err := loadFeaturesFile(path)
	require.NoError(t, err)
	assert.Equal(t, advisor.FeatureVector{12, 3.5, 0}, features)
}

func TestLoadFeaturesFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

	_, err := loadFeaturesFile(path)
	assert.Error(t, err)
}

func TestLoadFeaturesFile_Missing(t *testing.T) {
	_, err := loadFeaturesFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFeaturesFile_NotNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o644))

	_, err := loadFeaturesFile(path)
	assert.Error(t, err)
}
