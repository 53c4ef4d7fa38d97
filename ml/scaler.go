package ml

import (
	"errors"
	"fmt"
	"math"
)

const (
	KindStandardScaler = "standard_scaler"
	KindMinMaxScaler   = "minmax_scaler"
)

// StandardScaler centres each feature on its fitted mean and divides by its
// fitted scale.
type StandardScaler struct {
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
	Features []string  `json:"feature_names,omitempty"`
}

// Transform returns (x - mean) / scale per column.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}
	if err := checkShape(features, len(s.Mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, v := range features {
		scale := s.Scale[i]
		if scale == 0 {
			// zero-variance column
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }
func (s *StandardScaler) Kind() string { return KindStandardScaler }
func (s *StandardScaler) FeatureNames() []string { return s.Features }

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("mean is empty")
	}
	if len(s.Scale) != len(s.Mean) {
		return fmt.Errorf("scale has %d entries, mean has %d", len(s.Scale), len(s.Mean))
	}
	if err := checkNames(s.Features, len(s.Mean)); err != nil {
		return err
	}
	if err := checkFinite("mean", s.Mean); err != nil {
		return err
	}
	for i, v := range s.Scale {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("scale[%d] is invalid: %v", i, v)
		}
	}
	return nil
}

// MinMaxScaler maps each feature onto [0, 1] using the fitted column range.
type MinMaxScaler struct {
	DataMin  []float64 `json:"data_min"`
	DataMax  []float64 `json:"data_max"`
	Features []string  `json:"feature_names,omitempty"`
}

// Transform maps each column onto [0, 1] using the fitted range.
func (s *MinMaxScaler) Transform(features []float64) ([]float64, error) {
	if len(s.DataMin) == 0 {
		return nil, ErrNotFitted
	}
	return NormalizeVector(features, s.DataMin, s.DataMax)
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.DataMin) }
func (s *MinMaxScaler) Kind() string { return KindMinMaxScaler }
func (s *MinMaxScaler) FeatureNames() []string { return s.Features }

func (s *MinMaxScaler) validate() error {
	if len(s.DataMin) == 0 {
		return errors.New("data_min is empty")
	}
	if len(s.DataMax) != len(s.DataMin) {
		return fmt.Errorf("data_max has %d entries, data_min has %d", len(s.DataMax), len(s.DataMin))
	}
	if err := checkNames(s.Features, len(s.DataMin)); err != nil {
		return err
	}
	if err := checkFinite("data_min", s.DataMin); err != nil {
		return err
	}
	if err := checkFinite("data_max", s.DataMax); err != nil {
		return err
	}
	for i := range s.DataMin {
		if s.DataMax[i] < s.DataMin[i] {
			return fmt.Errorf("data_max[%d] < data_min[%d]", i, i)
		}
	}
	return nil
}

// NormalizeFeature scales value into [0, 1]; a zero range yields 0.
func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

// NormalizeVector applies NormalizeFeature column by column.
func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(values) != len(mins) || len(values) != len(maxs) {
		return nil, shapeError(len(values), len(mins))
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}

func shapeError(got, want int) error {
	return fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, got, want)
}

func checkNames(names []string, n int) error {
	if len(names) != 0 && len(names) != n {
		return fmt.Errorf("feature_names has %d entries, want %d", len(names), n)
	}
	return nil
}

func checkFinite(field string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not finite", field, i)
		}
	}
	return nil
}
