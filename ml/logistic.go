package ml

import (
	"errors"
	"fmt"
	"math"
)

// KindLogisticRegression tags logistic regression artifacts.
const KindLogisticRegression = "logistic_regression"

// LogisticRegression is a fitted binary linear classifier. Classes holds the
// negative and positive labels in that order.
type LogisticRegression struct {
	Coef      []float64  `json:"coef"`
	Intercept float64    `json:"intercept"`
	Classes   [2]float64 `json:"classes"`
	Features  []string   `json:"feature_names,omitempty"`
}

// Predict returns Classes[1] when the decision function is positive, otherwise
// Classes[0].
func (m *LogisticRegression) Predict(features []float64) (float64, error) {
	if len(m.Coef) == 0 {
		return 0, ErrNotFitted
	}
	score, err := m.DecisionFunction(features)
	if err != nil {
		return 0, err
	}
	if score > 0 {
		return m.Classes[1], nil
	}
	return m.Classes[0], nil
}

// DecisionFunction returns the signed distance w·x+b.
func (m *LogisticRegression) DecisionFunction(features []float64) (float64, error) {
	if err := checkShape(features, len(m.Coef)); err != nil {
		return 0, err
	}
	score := m.Intercept
	for i, w := range m.Coef {
		score += w * features[i]
	}
	if math.IsNaN(score) {
		return 0, errors.New("decision function is NaN")
	}
	return score, nil
}

func (m *LogisticRegression) NumFeatures() int { return len(m.Coef) }
func (m *LogisticRegression) Kind() string { return KindLogisticRegression }
func (m *LogisticRegression) FeatureNames() []string { return m.Features }

func (m *LogisticRegression) validate() error {
	if len(m.Coef) == 0 {
		return errors.New("coef is empty")
	}
	if err := checkNames(m.Features, len(m.Coef)); err != nil {
		return err
	}
	if err := checkFinite("coef", m.Coef); err != nil {
		return err
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return errors.New("intercept is not finite")
	}
	if m.Classes[0] == m.Classes[1] {
		return fmt.Errorf("classes must differ, got %v", m.Classes)
	}
	return nil
}
