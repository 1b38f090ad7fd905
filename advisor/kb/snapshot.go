// Package kb provides immutable knowledge-base snapshots for the advisor
// core: the fitted projection, cluster models, and per-cluster Pareto
// frontiers mined from previous design-space explorations. Snapshots load
// from a YAML manifest with CSV frontier tables or from a single SQLite file,
// and support leave-one-out filtering for evaluation.
package kb

import (
	"fmt"
	"sort"

	"github.com/collective-hls/collective-hls/advisor"
)

// Application is one contributed application: its raw feature vector and the
// cluster it was assigned to when the KB was built.
type Application struct {
	Name     string
	Cluster  int
	Features advisor.FeatureVector
}

// point is one Pareto frontier entry with its contributing application, kept
// so leave-one-out views can drop an application's contributions.
type point struct {
	App       string
	Candidate advisor.Candidate
}

// Snapshot is one versioned, immutable knowledge-base view. It implements
// advisor.KnowledgeView. Snapshots are never mutated after construction;
// WithoutApplication returns a filtered copy.
type Snapshot struct {
	version    string
	projection *advisor.Projection
	models     []advisor.ClusterModel
	apps       map[string]Application
	points     []point
	frontiers  map[int][]advisor.Candidate
}

// NewSnapshot assembles a snapshot from fitted artifacts. Frontier entries
// are grouped by cluster and kept in insertion order within each cluster.
func NewSnapshot(version string, projection *advisor.Projection, models []advisor.ClusterModel, apps []Application, entries []FrontierEntry) *Snapshot {
	s := &Snapshot{
		version:    version,
		projection: projection,
		models:     models,
		apps:       make(map[string]Application, len(apps)),
	}
	for _, app := range apps {
		s.apps[app.Name] = app
	}
	for _, e := range entries {
		s.points = append(s.points, point{App: e.App, Candidate: e.Candidate})
	}
	s.rebuildFrontiers()
	return s
}

// FrontierEntry is one Pareto point together with the application whose
// exploration produced it.
type FrontierEntry struct {
	App       string
	Candidate advisor.Candidate
}

func (s *Snapshot) rebuildFrontiers() {
	s.frontiers = make(map[int][]advisor.Candidate)
	for _, p := range s.points {
		c := p.Candidate.Combination.Cluster
		s.frontiers[c] = append(s.frontiers[c], p.Candidate)
	}
}

// Version returns the KB version identifier.
func (s *Snapshot) Version() string { return s.version }

// Projection returns the fitted feature-space transform.
func (s *Snapshot) Projection() *advisor.Projection { return s.projection }

// ClusterModels returns the fitted cluster descriptors.
func (s *Snapshot) ClusterModels() []advisor.ClusterModel { return s.models }

// ParetoSet returns the stored frontier of one cluster; empty for unknown ids.
func (s *Snapshot) ParetoSet(cluster int) []advisor.Candidate {
	return s.frontiers[cluster]
}

// Applications returns the contributed applications sorted by name.
func (s *Snapshot) Applications() []Application {
	apps := make([]Application, 0, len(s.apps))
	for _, app := range s.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps
}

// Application looks up one contributed application by name.
func (s *Snapshot) Application(name string) (Application, bool) {
	app, ok := s.apps[name]
	return app, ok
}

// FrontierOf returns the Pareto points contributed by one application, in
// stored order. Used by the leave-one-out harness to replay an application's
// own recorded runs against recommendations mined from everyone else.
func (s *Snapshot) FrontierOf(name string) []advisor.Candidate {
	var out []advisor.Candidate
	for _, p := range s.points {
		if p.App == name {
			out = append(out, p.Candidate)
		}
	}
	return out
}

// Clusters returns the cluster ids that have a stored frontier, sorted.
func (s *Snapshot) Clusters() []int {
	ids := make([]int, 0, len(s.frontiers))
	for id := range s.frontiers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WithoutApplication returns a leave-one-out view: a copy of the snapshot
// with the named application's feature vector and all of its contributed
// frontier points removed. The receiver is unchanged. The core never learns
// the exclusion happened; it just sees a smaller snapshot.
func (s *Snapshot) WithoutApplication(name string) *Snapshot {
	loo := &Snapshot{
		version:    s.version,
		projection: s.projection,
		models:     s.models,
		apps:       make(map[string]Application, len(s.apps)),
	}
	for n, app := range s.apps {
		if n != name {
			loo.apps[n] = app
		}
	}
	for _, p := range s.points {
		if p.App != name {
			loo.points = append(loo.points, p)
		}
	}
	loo.rebuildFrontiers()
	return loo
}

// Validate checks the structural invariants the core relies on: projection
// dimensions agree with every stored feature vector and cluster model, and no
// frontier entry dominates another within the same cluster.
func (s *Snapshot) Validate() error {
	if s.projection == nil || s.projection.Matrix == nil {
		return fmt.Errorf("snapshot %s: missing projection", s.version)
	}
	rows, cols := s.projection.Matrix.Dims()
	if len(s.projection.Centering) != rows {
		return fmt.Errorf("snapshot %s: centering has %d entries, projection expects %d", s.version, len(s.projection.Centering), rows)
	}
	for _, app := range s.apps {
		if len(app.Features) != rows {
			return fmt.Errorf("snapshot %s: application %s has %d features, projection expects %d", s.version, app.Name, len(app.Features), rows)
		}
	}
	for _, model := range s.models {
		if model.Dim() != cols {
			return fmt.Errorf("snapshot %s: cluster %d fitted on %d components, projection retains %d", s.version, model.ID(), model.Dim(), cols)
		}
	}
	for cluster, frontier := range s.frontiers {
		for i := range frontier {
			for j := range frontier {
				if i == j {
					continue
				}
				if frontier[i].RecordedQoR.Dominates(frontier[j].RecordedQoR) {
					return fmt.Errorf("snapshot %s: cluster %d frontier entry %s dominates %s",
						s.version, cluster, frontier[i].Combination.Key, frontier[j].Combination.Key)
				}
			}
		}
	}
	return nil
}
