package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Format is the only model format served: XGBoost's binary save_model output
	Format = "xgboost-binary"

	// ModelFileName is the booster inside a model directory
	ModelFileName = "model.bin"

	// ManifestFileName describes the booster next to it
	ManifestFileName = "manifest.json"
)

// Manifest describes a model directory. The binary format carries no
// column names, so FeatureNames lists the training columns in order.
type Manifest struct {
	Format       string   `json:"format"`
	Version      string   `json:"version,omitempty"`
	Description  string   `json:"description,omitempty"`
	Created      string   `json:"created,omitempty"`
	FeatureNames []string `json:"feature_names"`
}

// ReadManifest reads and validates the manifest in dir
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the format and the feature list
func (m *Manifest) Validate() error {
	if m.Format != Format {
		return fmt.Errorf("unsupported model format %q, expected %q", m.Format, Format)
	}
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("manifest lists no feature names")
	}
	seen := make(map[string]bool, len(m.FeatureNames))
	for _, name := range m.FeatureNames {
		if seen[name] {
			return fmt.Errorf("duplicate feature name %q", name)
		}
		seen[name] = true
	}
	return nil
}
