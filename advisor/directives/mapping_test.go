package directives

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMappingFile = `Array_1,weights,L1,[64, 16]
OuterLoop_1,L2
InnerLoop_1_1,L3
`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ActionPoint-Label-Mapping.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMapping(t *testing.T) {
	mapping, err := LoadMapping(writeMapping(t, testMappingFile))
	require.NoError(t, err)
	require.Len(t, mapping, 3)

	arr := mapping["Array_1"]
	assert.Equal(t, "L1", arr.Label)
	require.NotNil(t, arr.Array)
	assert.Equal(t, "weights", arr.Array.Array)
	assert.Equal(t, 64, arr.Array.Dim1)
	assert.Equal(t, 16, arr.Array.Dim2)

	loop := mapping["OuterLoop_1"]
	assert.Equal(t, "L2", loop.Label)
	assert.Nil(t, loop.Array)
}

func TestLoadMapping_BadLine(t *testing.T) {
	_, err := LoadMapping(writeMapping(t, "just-one-field\n"))
	assert.Error(t, err)
}

func TestMapping_Render(t *testing.T) {
	mapping, err := LoadMapping(writeMapping(t, testMappingFile))
	require.NoError(t, err)

	pragmas, err := mapping.Render(map[string]string{
		"Array_1":       "cyclic_4_1",
		"OuterLoop_1":   "pipeline_1",
		"InnerLoop_1_1": "unroll_128", // valid loop label; factors aren't capped for loops
		"Array_99":      "cyclic_2_1", // unknown action point: skipped
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"L1": "#pragma HLS array_partition variable=weights cyclic factor=4 dim=1",
		"L2": "#pragma HLS pipeline II=1",
		"L3": "#pragma HLS unroll factor=128",
	}, pragmas)
}

func TestMapping_RenderDropsCappedArrayDirectives(t *testing.T) {
	mapping, err := LoadMapping(writeMapping(t, testMappingFile))
	require.NoError(t, err)

	pragmas, err := mapping.Render(map[string]string{"Array_1": "cyclic_128_1"})
	require.NoError(t, err)
	assert.Empty(t, pragmas)
}

func TestMapping_RenderBadLabel(t *testing.T) {
	mapping, err := LoadMapping(writeMapping(t, testMappingFile))
	require.NoError(t, err)
	_, err = mapping.Render(map[string]string{"OuterLoop_1": "dataflow"})
	assert.Error(t, err)
}
