package kb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/collective-hls/collective-hls/advisor"
)

// ManifestName is the snapshot manifest file inside a KB directory.
const ManifestName = "kb.yaml"

// Manifest is the on-disk YAML form of a KB snapshot, minus the frontier
// tables, which live in one CSV file per contributed application.
type Manifest struct {
	Version     string        `yaml:"version"`
	Features    int           `yaml:"features"`
	Components  int           `yaml:"components"`
	Centering   []float64     `yaml:"centering"`
	Projection  [][]float64   `yaml:"projection"` // one row per feature
	Clusters    []ClusterSpec `yaml:"clusters"`
	Apps        []AppSpec     `yaml:"applications"`
	FrontierDir string        `yaml:"frontier_dir"`
}

// ClusterSpec describes one fitted cluster model.
type ClusterSpec struct {
	ID         int       `yaml:"id"`
	Kind       string    `yaml:"kind"` // "gaussian" or "centroid"
	Mean       []float64 `yaml:"mean,omitempty"`
	Covariance []float64 `yaml:"covariance,omitempty"` // row-major
	Centroid   []float64 `yaml:"centroid,omitempty"`
	Radius     float64   `yaml:"radius,omitempty"`
}

// AppSpec describes one contributed application.
type AppSpec struct {
	Name     string    `yaml:"name"`
	Cluster  int       `yaml:"cluster"`
	Features []float64 `yaml:"features"`
}

// LoadDir loads a snapshot from a KB directory: the kb.yaml manifest plus one
// frontier CSV per application under the manifest's frontier_dir.
func LoadDir(dir string) (*Snapshot, error) {
	manifest, entries, err := LoadDirRaw(dir)
	if err != nil {
		return nil, err
	}
	projection, models, apps, err := manifest.build()
	if err != nil {
		return nil, err
	}
	return NewSnapshot(manifest.Version, projection, models, apps, entries), nil
}

// LoadDirRaw loads the manifest and frontier entries of a KB directory
// without building the fitted artifacts. Used to re-encode a KB into another
// storage layout.
func LoadDirRaw(dir string) (*Manifest, []FrontierEntry, error) {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, nil, err
	}

	frontierDir := manifest.FrontierDir
	if frontierDir == "" {
		frontierDir = "ParetoFrontiers"
	}
	var entries []FrontierEntry
	for _, app := range manifest.Apps {
		path := filepath.Join(dir, frontierDir, app.Name+".csv")
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			// Applications without an explored frontier still contribute
			// their feature vector to the clustering.
			continue
		}
		appEntries, err := LoadFrontierCSV(path, app.Name, app.Cluster)
		if err != nil {
			return nil, nil, fmt.Errorf("loading frontier for %s: %w", app.Name, err)
		}
		entries = append(entries, appEntries...)
	}
	return manifest, entries, nil
}

// LoadManifest reads and parses a kb.yaml manifest. Unknown fields are
// rejected so stale manifests fail loudly.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading KB manifest: %w", err)
	}
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing KB manifest: %w", err)
	}
	return &m, nil
}

// build converts the manifest into fitted core artifacts.
func (m *Manifest) build() (*advisor.Projection, []advisor.ClusterModel, []Application, error) {
	if m.Features <= 0 || m.Components <= 0 {
		return nil, nil, nil, fmt.Errorf("manifest %s: features and components must be positive", m.Version)
	}
	if len(m.Projection) != m.Features {
		return nil, nil, nil, fmt.Errorf("manifest %s: projection has %d rows, want %d", m.Version, len(m.Projection), m.Features)
	}
	matrix := mat.NewDense(m.Features, m.Components, nil)
	for i, row := range m.Projection {
		if len(row) != m.Components {
			return nil, nil, nil, fmt.Errorf("manifest %s: projection row %d has %d columns, want %d", m.Version, i, len(row), m.Components)
		}
		matrix.SetRow(i, row)
	}
	projection := &advisor.Projection{Centering: m.Centering, Matrix: matrix}

	models := make([]advisor.ClusterModel, 0, len(m.Clusters))
	for _, spec := range m.Clusters {
		model, err := spec.build()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("manifest %s: %w", m.Version, err)
		}
		models = append(models, model)
	}

	apps := make([]Application, 0, len(m.Apps))
	for _, spec := range m.Apps {
		apps = append(apps, Application{Name: spec.Name, Cluster: spec.Cluster, Features: spec.Features})
	}
	return projection, models, apps, nil
}

func (c ClusterSpec) build() (advisor.ClusterModel, error) {
	switch c.Kind {
	case "gaussian":
		return advisor.NewGaussianModel(c.ID, c.Mean, c.Covariance)
	case "centroid":
		return advisor.NewCentroidModel(c.ID, c.Centroid, c.Radius)
	default:
		return nil, fmt.Errorf("cluster %d: unknown model kind %q (valid: gaussian, centroid)", c.ID, c.Kind)
	}
}
