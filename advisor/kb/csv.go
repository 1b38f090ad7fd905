package kb

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/collective-hls/collective-hls/advisor"
)

// Frontier CSV columns carrying QoR; every other column is an action point
// whose cell holds the directive label chosen by that Pareto point ("NDIR"
// when the action point is left untouched).
const (
	colSolutionID = "Solution_Id"
	colLatency    = "DesignLatency_Msec"
	colBRAM       = "BRAM_Utilization"
	colDSP        = "DSP_Utilization"
	colFF         = "FF_Utilization"
	colLUT        = "LUT_Utilization"
)

// noDirective marks an action point a Pareto point leaves untouched.
const noDirective = "NDIR"

// LoadFrontierCSV reads one application's Pareto frontier table. Each row is
// one directive combination with its recorded QoR; directive columns become
// the combination's action-point map. Rows are tagged with the given cluster
// id, the one the contributing application belongs to.
func LoadFrontierCSV(path, app string, cluster int) ([]FrontierEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frontier table: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{colLatency, colBRAM, colDSP, colFF, colLUT} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("frontier table missing column %s", required)
		}
	}

	var entries []FrontierEntry
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		rowNum++

		qor, err := parseQoR(row, index)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		key := fmt.Sprintf("%s/%d", app, rowNum)
		if i, ok := index[colSolutionID]; ok && row[i] != "" {
			key = fmt.Sprintf("%s/%s", app, row[i])
		}

		directives := make(map[string]string)
		for name, i := range index {
			switch name {
			case colSolutionID, colLatency, colBRAM, colDSP, colFF, colLUT:
				continue
			}
			if i < len(row) && row[i] != "" && row[i] != noDirective {
				directives[name] = row[i]
			}
		}

		entries = append(entries, FrontierEntry{
			App: app,
			Candidate: advisor.Candidate{
				Combination: advisor.DirectiveCombination{Key: key, Cluster: cluster, Directives: directives},
				RecordedQoR: qor,
			},
		})
	}
	return entries, nil
}

func parseQoR(row []string, index map[string]int) (advisor.QoRRecord, error) {
	var qor advisor.QoRRecord
	for _, f := range []struct {
		col string
		dst *float64
	}{
		{colLatency, &qor.LatencyMs},
		{colBRAM, &qor.BRAMPct},
		{colDSP, &qor.DSPPct},
		{colFF, &qor.FFPct},
		{colLUT, &qor.LUTPct},
	} {
		i := index[f.col]
		if i >= len(row) {
			return qor, fmt.Errorf("missing value for %s", f.col)
		}
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return qor, fmt.Errorf("parsing %s: %w", f.col, err)
		}
		*f.dst = v
	}
	return qor, nil
}
