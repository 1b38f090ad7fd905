package directives

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLoop(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"pipeline", "#pragma HLS pipeline"},
		{"pipeline_1", "#pragma HLS pipeline II=1"},
		{"unroll", "#pragma HLS unroll"},
		{"unroll_8", "#pragma HLS unroll factor=8"},
	}
	for _, tt := range tests {
		got, err := RenderLoop(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.want, got)
	}

	_, err := RenderLoop("dataflow")
	assert.Error(t, err)
}

func TestRenderArray(t *testing.T) {
	target := ArrayTarget{Array: "buf", Dim1: 64, Dim2: 16}

	got, err := RenderArray("cyclic_4_1", target)
	require.NoError(t, err)
	assert.Equal(t, "#pragma HLS array_partition variable=buf cyclic factor=4 dim=1", got)

	got, err = RenderArray("block_8_2", target)
	require.NoError(t, err)
	assert.Equal(t, "#pragma HLS array_partition variable=buf block factor=8 dim=2", got)

	got, err = RenderArray("complete_2", target)
	require.NoError(t, err)
	assert.Equal(t, "#pragma HLS array_partition variable=buf complete dim=2", got)
}

func TestRenderArray_DimensionCaps(t *testing.T) {
	// Factor larger than the targeted dimension: directive dropped.
	got, err := RenderArray("cyclic_32_2", ArrayTarget{Array: "buf", Dim1: 64, Dim2: 16})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Complete partition on an oversized dimension: dropped.
	got, err = RenderArray("complete_1", ArrayTarget{Array: "big", Dim1: 1024, Dim2: 4})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenderArray_BadLabels(t *testing.T) {
	target := ArrayTarget{Array: "buf", Dim1: 8, Dim2: 8}
	for _, label := range []string{"cyclic", "partial_2", "cyclic_x_1", "cyclic_2_y", "a_b_c_d"} {
		_, err := RenderArray(label, target)
		assert.Error(t, err, label)
	}
}

func TestApply_InsertsPragmasAfterLabels(t *testing.T) {
	source := strings.Join([]string{
		"void kernel(int a[64]) { // L1",
		"  for (int i = 0; i < 64; i++) { // L2",
		"    a[i] *= 2;",
		"  }",
		"}",
	}, "\n")
	pragmas := map[string]string{
		"L1": "#pragma HLS array_partition variable=a cyclic factor=4 dim=1",
		"L2": "#pragma HLS pipeline II=1",
	}

	var out strings.Builder
	require.NoError(t, Apply(strings.NewReader(source), &out, pragmas))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "#pragma HLS array_partition variable=a cyclic factor=4 dim=1", lines[1])
	assert.Equal(t, "#pragma HLS pipeline II=1", lines[3])
}

func TestApply_LabelsWithoutPragmasPassThrough(t *testing.T) {
	source := "int f(); // L1\nint g(); // L2\n"
	var out strings.Builder
	require.NoError(t, Apply(strings.NewReader(source), &out, map[string]string{"L2": "#pragma HLS inline"}))
	assert.Equal(t, "int f(); // L1\nint g(); // L2\n#pragma HLS inline\n", out.String())
}

func TestApply_CountsLabelsInOrder(t *testing.T) {
	// The L2 pragma must not fire before L1 has been seen.
	source := "// has L2 in a comment but L1 comes first: L1\n// L2\n"
	pragmas := map[string]string{"L1": "#pragma one", "L2": "#pragma two"}
	var out strings.Builder
	require.NoError(t, Apply(strings.NewReader(source), &out, pragmas))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#pragma one", lines[1])
	assert.Equal(t, "#pragma two", lines[3])
}
