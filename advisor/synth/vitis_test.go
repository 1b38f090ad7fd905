package synth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collective-hls/collective-hls/advisor"
)

func writeAppDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	appDir := filepath.Join(dir, "gemm")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "Kernel-Info.txt"), []byte("gemm\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "local_support.c"), []byte("// support"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "gemm.cpp"), []byte("void gemm() {} // L1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "ActionPoint-Label-Mapping.txt"), []byte("OuterLoop_1,L1\n"), 0o644))
	return dir
}

func TestReadTopLevelFunction(t *testing.T) {
	apps := writeAppDir(t)
	top, err := readTopLevelFunction(filepath.Join(apps, "gemm"))
	require.NoError(t, err)
	assert.Equal(t, "gemm", top)
}

func TestFindKernelSource_SkipsSupportFiles(t *testing.T) {
	apps := writeAppDir(t)
	src, err := findKernelSource(filepath.Join(apps, "gemm"))
	require.NoError(t, err)
	assert.Equal(t, "gemm.cpp", src)
}

func TestFindKernelSource_NoKernel(t *testing.T) {
	_, err := findKernelSource(t.TempDir())
	assert.Error(t, err)
}

func TestVitisRunner_WriteTclScript(t *testing.T) {
	dir := t.TempDir()
	r := NewVitisRunner(VitisConfig{Device: "xczu7ev-ffvc1156-2-e", ClockPeriodNs: "3.33"})
	require.NoError(t, r.writeTclScript(dir, "proposal", "gemm", "/tmp/optimized.cpp"))

	data, err := os.ReadFile(filepath.Join(dir, "script.tcl"))
	require.NoError(t, err)
	script := string(data)
	assert.Contains(t, script, "set_top gemm")
	assert.Contains(t, script, "set_part {xczu7ev-ffvc1156-2-e}")
	assert.Contains(t, script, "create_clock -period 3.33 -name default")
	// Default Vitis optimizations are off unless asked for.
	assert.Contains(t, script, "config_compile -pipeline_loops 0")
}

func TestVitisRunner_TclScriptWithVitisOptimizations(t *testing.T) {
	dir := t.TempDir()
	r := NewVitisRunner(VitisConfig{Device: "x", ClockPeriodNs: "3.33", VitisOptimizations: true})
	require.NoError(t, r.writeTclScript(dir, "proposal", "gemm", "src.cpp"))

	data, err := os.ReadFile(filepath.Join(dir, "script.tcl"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "config_array_partition")
}

func TestVitisRunner_PrepareFailureIsToolchainError(t *testing.T) {
	r := NewVitisRunner(VitisConfig{
		AppsDir:   t.TempDir(), // no such application inside
		OutputDir: t.TempDir(),
	})
	_, err := r.Synthesize(context.Background(), "missing-app", advisor.DirectiveCombination{Key: "k"})
	require.Error(t, err)
	var toolErr *advisor.ToolchainError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "prepare", toolErr.Stage)
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "gemm_3", sanitizeKey("gemm/3"))
	assert.Equal(t, "a_b_c", sanitizeKey("a/b c"))
}
