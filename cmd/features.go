package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/collective-hls/collective-hls/advisor"
)

// loadFeaturesFile reads a feature vector from a YAML file holding a plain
// sequence of numbers.
func loadFeaturesFile(path string) (advisor.FeatureVector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading feature vector: %w", err)
	}
	var features []float64
	if err := yaml.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parsing feature vector: %w", err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("feature vector file %s is empty", path)
	}
	return features, nil
}
