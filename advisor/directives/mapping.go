package directives

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MappingEntry ties one knowledge-base action point to an application's
// source: the line label (L<n>) the pragma goes after and, for array action
// points, the array it partitions.
type MappingEntry struct {
	ActionPoint string
	Label       string
	Array       *ArrayTarget // nil for loop action points
}

// Mapping is an application's action-point mapping, keyed by action point.
type Mapping map[string]MappingEntry

// LoadMapping parses an ActionPoint-Label-Mapping.txt file. Loop lines have
// the form "ActionPoint,Label"; array lines add the array name and dimension
// sizes: "ActionPoint,ArrayName,Label,[d1, d2]".
func LoadMapping(path string) (Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening action-point mapping: %w", err)
	}
	defer func() { _ = file.Close() }()

	mapping := make(Mapping)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		entry, err := parseMappingLine(parts)
		if err != nil {
			return nil, fmt.Errorf("mapping line %d: %w", lineNum, err)
		}
		mapping[entry.ActionPoint] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading action-point mapping: %w", err)
	}
	return mapping, nil
}

func parseMappingLine(parts []string) (MappingEntry, error) {
	if len(parts) > 3 {
		if len(parts) < 5 {
			return MappingEntry{}, fmt.Errorf("array mapping needs both dimension sizes, got %d fields", len(parts))
		}
		dim1, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[3]), "[")))
		if err != nil {
			return MappingEntry{}, fmt.Errorf("bad first dimension: %w", err)
		}
		dim2, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[4]), "]")))
		if err != nil {
			return MappingEntry{}, fmt.Errorf("bad second dimension: %w", err)
		}
		return MappingEntry{
			ActionPoint: strings.TrimSpace(parts[0]),
			Label:       strings.TrimSpace(parts[2]),
			Array:       &ArrayTarget{Array: strings.TrimSpace(parts[1]), Dim1: dim1, Dim2: dim2},
		}, nil
	}
	if len(parts) < 2 {
		return MappingEntry{}, fmt.Errorf("expected at least 2 comma-separated fields, got %d", len(parts))
	}
	return MappingEntry{
		ActionPoint: strings.TrimSpace(parts[0]),
		Label:       strings.TrimSpace(parts[1]),
	}, nil
}

// Render maps the advisor's abstract combination (action point → label) onto
// this application: pragma text keyed by source line label. Action points the
// combination does not set, or that the mapping does not know, are skipped;
// array directives suppressed by dimension caps render to empty text and are
// skipped too.
func (m Mapping) Render(combination map[string]string) (map[string]string, error) {
	pragmas := make(map[string]string)
	for actionPoint, label := range combination {
		entry, ok := m[actionPoint]
		if !ok {
			continue
		}
		var pragma string
		var err error
		if entry.Array != nil {
			pragma, err = RenderArray(label, *entry.Array)
		} else {
			pragma, err = RenderLoop(label)
		}
		if err != nil {
			return nil, fmt.Errorf("action point %s: %w", actionPoint, err)
		}
		if pragma != "" {
			pragmas[entry.Label] = pragma
		}
	}
	return pragmas, nil
}
