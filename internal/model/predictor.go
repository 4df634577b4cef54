package model

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/zakolko/zakolko/internal/models"
)

// ErrNotLoaded is returned when no model has been loaded yet
var ErrNotLoaded = errors.New("no model loaded")

// Predictor serves predictions from a model file that can be reloaded while serving
type Predictor struct {
	mu    sync.RWMutex
	path  string
	model *Model
	id    string
}

// NewPredictor creates a predictor for the model at path and tries to load it.
// A failed load is logged; the predictor then answers ErrNotLoaded until Reload succeeds.
func NewPredictor(path string) *Predictor {
	p := &Predictor{path: path}
	if _, err := p.Reload(); err != nil {
		log.Printf("Warning: model not available: %v", err)
	}
	return p
}

// Reload reads the model file again and assigns it a new id
func (p *Predictor) Reload() (string, error) {
	p.mu.RLock()
	path := p.path
	p.mu.RUnlock()

	if path == "" {
		return "", fmt.Errorf("no model path configured")
	}
	return p.LoadFrom(path)
}

// LoadFrom loads the model at path and, on success, makes path the one
// future reloads read. On failure the current model stays in place.
func (p *Predictor) LoadFrom(path string) (string, error) {
	m, err := Load(path)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()

	p.mu.Lock()
	p.path = path
	p.model = m
	p.id = id
	p.mu.Unlock()

	log.Printf("New model %s was loaded from %s (%d trees, %d features)", id, path, m.NumTrees(), len(m.FeatureNames()))
	return id, nil
}

// Predict encodes the form fields and returns the prediction truncated to
// whole euros, together with the id of the model that produced it
func (p *Predictor) Predict(features models.FormPayload) (int64, string, error) {
	p.mu.RLock()
	m, id := p.model, p.id
	p.mu.RUnlock()

	if m == nil {
		return 0, "", ErrNotLoaded
	}

	x, unknown, err := m.Encode(features)
	if err != nil {
		return 0, id, &InputError{Err: err}
	}
	if len(unknown) > 0 {
		log.Printf("Ignoring features unknown to model %s: %v", id, unknown)
	}

	v, err := m.Predict(x)
	if err != nil {
		return 0, id, err
	}
	return int64(v), id, nil
}

// IsLoaded reports whether a model is available
func (p *Predictor) IsLoaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}

// GetConfig describes the loaded model
func (p *Predictor) GetConfig() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.model == nil {
		return map[string]interface{}{
			"loaded": false,
			"path":   p.path,
		}
	}
	return map[string]interface{}{
		"loaded":   true,
		"path":     p.path,
		"model_id": p.id,
		"trees":    p.model.NumTrees(),
		"features": len(p.model.FeatureNames()),
	}
}

// InputError reports form fields that cannot be encoded
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }
