package synth

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/collective-hls/collective-hls/advisor"
)

// flexNumber accepts JSON numbers whether or not the toolchain quoted them;
// report numerics switch between the two across Vitis versions.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber(strings.Trim(string(b), `"`))
	return nil
}

func (n flexNumber) Int64() (int64, error)     { return strconv.ParseInt(string(n), 10, 64) }
func (n flexNumber) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// solutionData mirrors the parts of Vitis HLS's solution1_data.json the
// advisor needs.
type solutionData struct {
	ClockInfo struct {
		Latency     flexNumber `json:"Latency"`
		ClockPeriod flexNumber `json:"ClockPeriod"`
	} `json:"ClockInfo"`
	ModuleInfo struct {
		Metrics map[string]struct {
			Area map[string]string `json:"Area"`
		} `json:"Metrics"`
	} `json:"ModuleInfo"`
}

// ParseSolutionReport extracts a QoR record from a solution1_data.json
// report. Latency is converted from cycles to milliseconds using the report's
// clock period (falling back to the configured period when the report omits
// it). A report without a latency figure means the design did not synthesize
// and is an error, not a QoR.
func ParseSolutionReport(path, topFunc, fallbackClockNs string) (*advisor.QoRRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synthesis report: %w", err)
	}
	var sol solutionData
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("parsing synthesis report: %w", err)
	}

	cycles, err := sol.ClockInfo.Latency.Int64()
	if err != nil || cycles < 0 {
		return nil, fmt.Errorf("report has no latency figure; design did not synthesize")
	}

	periodNs, err := sol.ClockInfo.ClockPeriod.Float64()
	if err != nil || periodNs <= 0 {
		periodNs, err = strconv.ParseFloat(fallbackClockNs, 64)
		if err != nil {
			return nil, fmt.Errorf("report has no clock period and fallback %q is not a number", fallbackClockNs)
		}
	}

	module, ok := sol.ModuleInfo.Metrics[topFunc]
	if !ok {
		return nil, fmt.Errorf("report has no metrics for top-level function %s", topFunc)
	}

	qor := &advisor.QoRRecord{
		LatencyMs: float64(cycles) * periodNs / 1e6,
		BRAMPct:   parseUtilization(module.Area["UTIL_BRAM"]),
		DSPPct:    parseUtilization(module.Area["UTIL_DSP"]),
		FFPct:     parseUtilization(module.Area["UTIL_FF"]),
		LUTPct:    parseUtilization(module.Area["UTIL_LUT"]),
	}
	return qor, nil
}

// parseUtilization reads a utilization percentage cell. Vitis prefixes
// approximate figures with '~' and omits zero cells entirely.
func parseUtilization(cell string) float64 {
	cell = strings.TrimSpace(strings.TrimPrefix(cell, "~"))
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}
