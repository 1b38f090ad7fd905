package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collective-hls/collective-hls/advisor"
	"github.com/collective-hls/collective-hls/advisor/directives"
)

// VitisConfig configures the Vitis HLS runner.
type VitisConfig struct {
	// AppsDir holds one directory per application with its sources,
	// Kernel-Info.txt (top-level function name) and
	// ActionPoint-Label-Mapping.txt.
	AppsDir string
	// OutputDir receives per-attempt work directories.
	OutputDir string
	// Device is the target FPGA part identifier.
	Device string
	// ClockPeriodNs is the target clock period in nanoseconds.
	ClockPeriodNs string
	// Timeout bounds one synthesis run. Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration
	// VitisOptimizations keeps the toolchain's default optimizations on.
	// When false, automatic array partitioning and loop pipelining are
	// disabled so only the proposed directives shape the design.
	VitisOptimizations bool
	// Binary overrides the vitis_hls executable name.
	Binary string
}

// VitisRunner synthesizes directive combinations with Vitis HLS. It
// implements advisor.SynthesisAdapter; one Synthesize call is one full
// csynth run and blocks until the toolchain finishes or times out.
type VitisRunner struct {
	cfg VitisConfig
}

// NewVitisRunner builds a runner; missing optional fields get defaults.
func NewVitisRunner(cfg VitisConfig) *VitisRunner {
	if cfg.Binary == "" {
		cfg.Binary = "vitis_hls"
	}
	return &VitisRunner{cfg: cfg}
}

// Synthesize applies the combination to the application's source, runs
// csynth, and parses the QoR report. Every failure before a parsed report is
// a toolchain failure; a parsed report always yields a QoR, feasible or not.
func (r *VitisRunner) Synthesize(ctx context.Context, app string, combo advisor.DirectiveCombination) (*advisor.QoRRecord, error) {
	appDir := filepath.Join(r.cfg.AppsDir, app)

	topFunc, err := readTopLevelFunction(appDir)
	if err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}
	srcName, err := findKernelSource(appDir)
	if err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}

	mapping, err := directives.LoadMapping(filepath.Join(appDir, "ActionPoint-Label-Mapping.txt"))
	if err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}
	pragmas, err := mapping.Render(combo.Directives)
	if err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}

	workDir := filepath.Join(r.cfg.OutputDir, app, sanitizeKey(combo.Key))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: fmt.Errorf("creating work directory: %w", err)}
	}

	optimized := filepath.Join(workDir, "optimized"+filepath.Ext(srcName))
	if err := directives.ApplyFile(filepath.Join(appDir, srcName), optimized, pragmas); err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}

	project := "proposal"
	if err := r.writeTclScript(workDir, project, topFunc, optimized); err != nil {
		return nil, &advisor.ToolchainError{Stage: "prepare", Err: err}
	}

	if err := r.runCsynth(ctx, workDir); err != nil {
		return nil, &advisor.ToolchainError{Stage: "csynth", Err: err}
	}

	report := filepath.Join(workDir, project, "solution1", "solution1_data.json")
	qor, err := ParseSolutionReport(report, topFunc, r.cfg.ClockPeriodNs)
	if err != nil {
		return nil, &advisor.ToolchainError{Stage: "report-parse", Err: err}
	}
	return qor, nil
}

func (r *VitisRunner) writeTclScript(workDir, project, topFunc, srcPath string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "open_project %s\n", project)
	fmt.Fprintf(&b, "set_top %s\n", topFunc)
	fmt.Fprintf(&b, "add_files %s\n", srcPath)
	b.WriteString("open_solution \"solution1\" -flow_target vivado\n")
	fmt.Fprintf(&b, "set_part {%s}\n", r.cfg.Device)
	fmt.Fprintf(&b, "create_clock -period %s -name default\n", r.cfg.ClockPeriodNs)
	if !r.cfg.VitisOptimizations {
		b.WriteString("config_array_partition -complete_threshold 0 -throughput_driven off\n")
		b.WriteString("config_compile -pipeline_loops 0\n")
	}
	b.WriteString("csynth_design\n")
	b.WriteString("export_design -format ip_catalog\n")
	b.WriteString("exit\n")
	return os.WriteFile(filepath.Join(workDir, "script.tcl"), []byte(b.String()), 0o644)
}

func (r *VitisRunner) runCsynth(ctx context.Context, workDir string) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, r.cfg.Binary, "-f", "script.tcl", "-l", "vitis_hls.log")
	cmd.Dir = workDir

	logrus.Infof("running %s in %s", r.cfg.Binary, workDir)
	start := time.Now()
	err := cmd.Run()
	logrus.Infof("synthesis finished in %s", time.Since(start).Round(time.Second))
	if err != nil {
		return fmt.Errorf("running %s: %w", r.cfg.Binary, err)
	}
	return nil
}

// readTopLevelFunction returns the first line of the application's
// Kernel-Info.txt.
func readTopLevelFunction(appDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(appDir, "Kernel-Info.txt"))
	if err != nil {
		return "", fmt.Errorf("reading kernel info: %w", err)
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	if line == "" {
		return "", fmt.Errorf("kernel info is empty")
	}
	return line, nil
}

// findKernelSource returns the kernel source file name: the first .c or .cpp
// file that is not a test-bench support file.
func findKernelSource(appDir string) (string, error) {
	entries, err := os.ReadDir(appDir)
	if err != nil {
		return "", fmt.Errorf("listing application sources: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == "support.c" || name == "local_support.c" {
			continue
		}
		if strings.HasSuffix(name, ".c") || strings.HasSuffix(name, ".cpp") {
			return name, nil
		}
	}
	return "", fmt.Errorf("no kernel source found in %s", appDir)
}

func sanitizeKey(key string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(key)
}
