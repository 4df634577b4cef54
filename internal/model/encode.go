package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zakolko/zakolko/internal/models"
)

// Integer listing attributes. Zero means unknown.
var numericFeatures = []string{"uzit_plocha", "rok_vystavby", "pocet_nadz_podlazi", "pocet_izieb", "podlazie"}

// Coordinates. Zero means unknown.
var gpsFeatures = []string{"latitude", "longitude"}

// Encode builds the model input vector from submitted form fields.
// Numeric fields are copied, every other field k=v switches on the one-hot
// column "k_v". Columns the model does not know are returned in unknown.
func (m *Model) Encode(features models.FormPayload) (x []float64, unknown []string, err error) {
	x = make([]float64, len(m.features))

	present := make(map[string]string, len(features))
	for k, v := range features {
		if strings.TrimSpace(v) != "" {
			present[k] = strings.TrimSpace(v)
		}
	}

	for _, name := range numericFeatures {
		raw, ok := present[name]
		delete(present, name)
		v := math.NaN()
		if ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %q is not an integer", name, raw)
			}
			if n != 0 {
				v = float64(n)
			}
		}
		m.set(x, name, v)
	}

	for _, name := range gpsFeatures {
		raw, ok := present[name]
		delete(present, name)
		v := math.NaN()
		if ok {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %q is not a number", name, raw)
			}
			if f != 0 {
				v = f
			}
		}
		m.set(x, name, v)
	}

	for k, v := range present {
		column := k + "_" + v
		if !m.set(x, column, 1) {
			unknown = append(unknown, column)
		}
	}
	sort.Strings(unknown)

	return x, unknown, nil
}

func (m *Model) set(x []float64, column string, v float64) bool {
	i, ok := m.index[column]
	if !ok {
		return false
	}
	x[i] = v
	return true
}
