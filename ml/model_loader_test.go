package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStandardScaler(t *testing.T) {
	data := []byte(`{
		"kind":          "standard_scaler",
		"feature_names": ["a", "b"],
		"mean":          [1, 2],
		"scale":         [0.5, 4]
	}`)
	s, err := DecodeScaler(data)
	require.NoError(t, err)
	assert.Equal(t, KindStandardScaler, s.Kind())
	assert.Equal(t, 2, s.NumFeatures())
	assert.Equal(t, []string{"a", "b"}, FeatureNamesOf(s))

	out, err := s.Transform([]float64{2, 6})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 1}, out, 1e-9)
}

func TestDecodeMinMaxScaler(t *testing.T) {
	s, err := DecodeScaler([]byte(`{"kind":"minmax_scaler","data_min":[0],"data_max":[4]}`))
	require.NoError(t, err)
	assert.Equal(t, KindMinMaxScaler, s.Kind())
	assert.Nil(t, FeatureNamesOf(s))
}

func TestDecodeScalerErrors(t *testing.T) {
	cases := map[string]string{
		"not json":     `pickle\x80`,
		"no kind":      `{"mean":[1],"scale":[1]}`,
		"wrong shape":  `{"kind":"standard_scaler","mean":[1,2],"scale":[1]}`,
		"wrong type":   `{"kind":"standard_scaler","mean":"x","scale":[1]}`,
		"classifier":   `{"kind":"decision_tree","n_features":1,"nodes":[{"is_leaf":true}]}`,
		"unknown kind": `{"kind":"robust_scaler"}`,
		"empty scaler": `{"kind":"minmax_scaler"}`,
	}
	for name, data := range cases {
		_, err := DecodeScaler([]byte(data))
		assert.Error(t, err, name)
	}

	_, err := DecodeScaler([]byte(`{"kind":"robust_scaler"}`))
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestDecodeDecisionTree(t *testing.T) {
	data := []byte(`{
		"kind":       "decision_tree",
		"n_features": 1,
		"nodes":      [
			{"feature_idx": 0, "threshold": 0.5, "left_child": 1, "right_child": 2},
			{"feature_idx": -1, "is_leaf": true, "class_label": 0},
			{"feature_idx": -1, "is_leaf": true, "class_label": 1}
		]
	}`)
	c, err := DecodeClassifier(data)
	require.NoError(t, err)
	assert.Equal(t, KindDecisionTree, c.Kind())

	label, err := c.Predict([]float64{0.7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, label)
}

func TestDecodeLogisticRegressionDefaultsClasses(t *testing.T) {
	c, err := DecodeClassifier([]byte(`{"kind":"logistic_regression","coef":[1,-1],"intercept":0}`))
	require.NoError(t, err)

	label, err := c.Predict([]float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, label)

	label, err = c.Predict([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, label)
}

func TestDecodeClassifierErrors(t *testing.T) {
	cases := map[string]string{
		"scaler":       `{"kind":"standard_scaler","mean":[1],"scale":[1]}`,
		"no nodes":     `{"kind":"decision_tree","n_features":1,"nodes":[]}`,
		"bad child":    `{"kind":"decision_tree","n_features":1,"nodes":[{"feature_idx":0,"left_child":7,"right_child":8}]}`,
		"same classes": `{"kind":"logistic_regression","coef":[1],"classes":[1,1]}`,
		"empty coef":   `{"kind":"logistic_regression","coef":[]}`,
		"truncated":    `{"kind":"logistic_regression","coef":[1`,
	}
	for name, data := range cases {
		_, err := DecodeClassifier([]byte(data))
		assert.Error(t, err, name)
	}
}
