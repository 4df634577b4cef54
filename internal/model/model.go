package model

import (
	"fmt"
	"path/filepath"

	"github.com/dmitryikh/leaves"
)

// Model is a loaded XGBoost regressor together with its input columns
type Model struct {
	ensemble *leaves.Ensemble
	features []string
	index    map[string]int
}

// New pairs an ensemble with the names of its input columns
func New(ensemble *leaves.Ensemble, features []string) (*Model, error) {
	if n := ensemble.NOutputGroups(); n != 1 {
		return nil, fmt.Errorf("model has %d outputs, expected a single regression output", n)
	}
	if n := ensemble.NFeatures(); n > len(features) {
		return nil, fmt.Errorf("model uses %d features but only %d are named", n, len(features))
	}

	index := make(map[string]int, len(features))
	for i, name := range features {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		index[name] = i
	}

	return &Model{
		ensemble: ensemble,
		features: append([]string(nil), features...),
		index:    index,
	}, nil
}

// Load reads a booster written by XGBoost's save_model and the manifest
// in the same directory
func Load(path string) (*Model, error) {
	manifest, err := ReadManifest(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	ensemble, err := leaves.XGEnsembleFromFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return New(ensemble, manifest.FeatureNames)
}

// Predict returns the raw regression output. NaN inputs follow each
// split's default direction.
func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.features) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.features), len(x))
	}

	out := make([]float64, 1)
	if err := m.ensemble.Predict(x, 0, out); err != nil {
		return 0, fmt.Errorf("failed to evaluate model: %w", err)
	}
	return out[0], nil
}

// FeatureNames returns the model's input columns in vector order
func (m *Model) FeatureNames() []string {
	return m.features
}

// NumTrees returns the ensemble size
func (m *Model) NumTrees() int {
	return m.ensemble.NEstimators()
}
