package advisor

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// ParetoSource exposes per-cluster Pareto frontiers. Implemented by
// kb.Snapshot; frontiers are read-only to the core.
type ParetoSource interface {
	// ParetoSet returns the stored Pareto-optimal candidates of one cluster.
	// Unknown clusters return an empty set.
	ParetoSet(cluster int) []Candidate
}

// SelectClusters returns every cluster whose membership probability is at
// least threshold. When no cluster clears the threshold the single
// highest-probability cluster is returned instead, so the selection is never
// empty while at least one model exists. Ids are returned sorted for
// deterministic downstream merging.
func SelectClusters(membership MembershipResult, threshold float64) []int {
	var selected []int
	for id, p := range membership {
		if p >= threshold {
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		best, bestP := -1, -1.0
		for id, p := range membership {
			if p > bestP || (p == bestP && id < best) {
				best, bestP = id, p
			}
		}
		if best >= 0 {
			selected = append(selected, best)
		}
	}
	sort.Ints(selected)
	return selected
}

// RetrieveCandidates merges the Pareto frontiers of the selected clusters
// into one ordered candidate list. Duplicate directive combinations (same
// key) keep the occurrence with the lower recorded latency. The merged list
// is sorted ascending by recorded latency, with total resource utilization as
// the tie-break. Fails with ErrEmptyKnowledgeBase when no selected cluster
// contributes a candidate.
func RetrieveCandidates(clusters []int, source ParetoSource) ([]Candidate, error) {
	byKey := make(map[string]Candidate)
	for _, cluster := range clusters {
		for _, cand := range source.ParetoSet(cluster) {
			prev, seen := byKey[cand.Combination.Key]
			if !seen || cand.RecordedQoR.LatencyMs < prev.RecordedQoR.LatencyMs {
				byKey[cand.Combination.Key] = cand
			}
		}
	}
	if len(byKey) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	merged := make([]Candidate, 0, len(byKey))
	for _, cand := range byKey {
		merged = append(merged, cand)
	}
	sort.Slice(merged, func(i, j int) bool {
		qi, qj := merged[i].RecordedQoR, merged[j].RecordedQoR
		if qi.LatencyMs != qj.LatencyMs {
			return qi.LatencyMs < qj.LatencyMs
		}
		if qi.TotalUtilization() != qj.TotalUtilization() {
			return qi.TotalUtilization() < qj.TotalUtilization()
		}
		return merged[i].Combination.Key < merged[j].Combination.Key
	})

	logrus.Debugf("retrieved %d candidates from clusters %v", len(merged), clusters)
	return merged, nil
}
