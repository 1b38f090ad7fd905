// Package directives turns the advisor's abstract directive labels into
// Vitis HLS pragmas and instruments application sources with them. Labels are
// the compact forms stored in the knowledge base: "cyclic_4_1" (array
// partition type_factor_dim), "complete_2" (complete partition on a dim),
// "unroll_8", "pipeline", "pipeline_1" (pipeline with an II).
package directives

import (
	"fmt"
	"strconv"
	"strings"
)

// completePartitionCap is the largest array dimension for which a complete
// partition is still rendered; larger arrays would blow up the register
// count, so the directive is dropped instead.
const completePartitionCap = 512

// ArrayTarget describes one array action point of an application: the array
// name the pragma refers to and its dimension sizes.
type ArrayTarget struct {
	Array string
	Dim1  int
	Dim2  int
}

// RenderLoop renders a loop directive label into pragma text. Loop labels are
// "pipeline", "pipeline_<II>", "unroll", or "unroll_<factor>".
func RenderLoop(label string) (string, error) {
	parts := strings.Split(label, "_")
	switch parts[0] {
	case "pipeline":
		if len(parts) == 2 {
			return fmt.Sprintf("#pragma HLS pipeline II=%s", parts[1]), nil
		}
		return "#pragma HLS pipeline", nil
	case "unroll":
		if len(parts) == 2 {
			return fmt.Sprintf("#pragma HLS unroll factor=%s", parts[1]), nil
		}
		return "#pragma HLS unroll", nil
	default:
		return "", fmt.Errorf("unknown loop directive label %q", label)
	}
}

// RenderArray renders an array-partition label into pragma text for the given
// target. Labels are "<type>_<factor>_<dim>" or "complete_<dim>". Directives
// whose factor exceeds the targeted dimension, or complete partitions on
// dimensions above the cap, return empty text: the proposal is dropped rather
// than handed to the toolchain malformed.
func RenderArray(label string, target ArrayTarget) (string, error) {
	parts := strings.Split(label, "_")
	switch len(parts) {
	case 2:
		if parts[0] != "complete" {
			return "", fmt.Errorf("unknown array directive label %q", label)
		}
		dim, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", fmt.Errorf("array directive label %q: bad dimension: %w", label, err)
		}
		if target.dimSize(dim) > completePartitionCap {
			return "", nil
		}
		return fmt.Sprintf("#pragma HLS array_partition variable=%s complete dim=%d", target.Array, dim), nil
	case 3:
		factor, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", fmt.Errorf("array directive label %q: bad factor: %w", label, err)
		}
		dim, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", fmt.Errorf("array directive label %q: bad dimension: %w", label, err)
		}
		if factor > target.dimSize(dim) {
			return "", nil
		}
		return fmt.Sprintf("#pragma HLS array_partition variable=%s %s factor=%d dim=%d", target.Array, parts[0], factor, dim), nil
	default:
		return "", fmt.Errorf("unknown array directive label %q", label)
	}
}

func (t ArrayTarget) dimSize(dim int) int {
	if dim == 1 {
		return t.Dim1
	}
	return t.Dim2
}
