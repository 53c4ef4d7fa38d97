package churn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnpredict/apperr"
	"churnpredict/ml"
)

type spyScaler struct {
	calls int
	names []string
	out   []float64
	err   error
}

func (s *spyScaler) Transform(features []float64) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.out != nil {
		return s.out, nil
	}
	return append([]float64(nil), features...), nil
}

func (s *spyScaler) NumFeatures() int { return FeatureCount }
func (s *spyScaler) Kind() string { return "spy" }
func (s *spyScaler) FeatureNames() []string { return s.names }

type spyClassifier struct {
	calls  int
	got    []float64
	raw    float64
	err    error
	panics bool
}

func (c *spyClassifier) Predict(features []float64) (float64, error) {
	c.calls++
	c.got = features
	if c.panics {
		panic("index out of range")
	}
	return c.raw, c.err
}

func (c *spyClassifier) NumFeatures() int { return FeatureCount }
func (c *spyClassifier) Kind() string { return "spy" }

func TestDecode(t *testing.T) {
	assert.Equal(t, Churn, Decode(1, DefaultPositiveClass))
	assert.Equal(t, NoChurn, Decode(0, DefaultPositiveClass))
	assert.Equal(t, NoChurn, Decode(2, DefaultPositiveClass))
	assert.Equal(t, NoChurn, Decode(0.999999, DefaultPositiveClass))
	assert.Equal(t, NoChurn, Decode(-1, DefaultPositiveClass))

	assert.Equal(t, Churn, Decode(0, 0))
	assert.Equal(t, NoChurn, Decode(1, 0))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "Churn", Churn.Label())
	assert.Equal(t, "No Churn", NoChurn.Label())
}

func TestPipelinePredict(t *testing.T) {
	s := &spyScaler{}
	c := &spyClassifier{raw: 1}
	p := NewPipeline(s, c, DefaultPositiveClass)

	pred, err := p.Predict(validRequest())
	require.NoError(t, err)
	assert.Equal(t, Prediction{Result: Churn, Label: "Churn", Raw: 1}, pred)
	assert.Equal(t, []float64{12, 0, 5, 150, 2, 0}, c.got)

	c.raw = 0
	pred, err = p.Predict(validRequest())
	require.NoError(t, err)
	assert.Equal(t, NoChurn, pred.Result)
}

func TestPipelineRejectsBeforeScaling(t *testing.T) {
	s := &spyScaler{}
	c := &spyClassifier{}
	p := NewPipeline(s, c, DefaultPositiveClass)

	r := validRequest()
	r.CashbackAmount = -10
	_, err := p.Predict(r)
	require.ErrorIs(t, err, apperr.ErrInvalidRequest)
	assert.Zero(t, s.calls)
	assert.Zero(t, c.calls)
}

func TestPipelineScalingErrors(t *testing.T) {
	tests := []struct {
		name   string
		scaler *spyScaler
	}{
		{"transform error", &spyScaler{err: ml.ErrShapeMismatch}},
		{"short output", &spyScaler{out: []float64{1, 2}}},
		{"reordered names", &spyScaler{names: []string{
			"Complain", "Tenure", "DaySinceLastOrder", "CashbackAmount", "MaritalStatus", "Gender",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &spyClassifier{raw: 1}
			_, err := NewPipeline(tt.scaler, c, DefaultPositiveClass).Predict(validRequest())
			assert.ErrorIs(t, err, apperr.ErrScaling)
			assert.Zero(t, c.calls)
		})
	}
}

func TestPipelineAcceptsMatchingNames(t *testing.T) {
	s := &spyScaler{names: FeatureNames()}
	_, err := NewPipeline(s, &spyClassifier{}, DefaultPositiveClass).Predict(validRequest())
	assert.NoError(t, err)
}

func TestPipelineInferenceErrors(t *testing.T) {
	_, err := NewPipeline(&spyScaler{}, &spyClassifier{err: errors.New("boom")}, 1).Predict(validRequest())
	assert.ErrorIs(t, err, apperr.ErrInference)

	_, err = NewPipeline(&spyScaler{}, &spyClassifier{panics: true}, 1).Predict(validRequest())
	assert.ErrorIs(t, err, apperr.ErrInference)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestPipelineClassifierNameMismatch(t *testing.T) {
	tree := &ml.DecisionTree{
		NFeatures: FeatureCount,
		Nodes:     []ml.TreeNode{{IsLeaf: true, ClassLabel: 1}},
		Features:  []string{"a", "b", "c", "d", "e", "f"},
	}
	_, err := NewPipeline(&spyScaler{}, tree, 1).Predict(validRequest())
	assert.ErrorIs(t, err, apperr.ErrInference)
}

func TestPipelineWithFittedArtifacts(t *testing.T) {
	scaler := &ml.StandardScaler{
		Mean:     []float64{10, 0.3, 4, 160, 2, 0.5},
		Scale:    []float64{8, 0.45, 3, 50, 0.7, 0.5},
		Features: FeatureNames(),
	}
	model := &ml.LogisticRegression{
		Coef:      []float64{-1.2, 1.5, -0.4, -0.3, 0.2, 0.1},
		Intercept: -1,
		Classes:   [2]float64{0, 1},
		Features:  FeatureNames(),
	}
	p := NewPipeline(scaler, model, DefaultPositiveClass)

	pred, err := p.Predict(validRequest())
	require.NoError(t, err)
	assert.Contains(t, []Result{Churn, NoChurn}, pred.Result)

	again, err := p.Predict(validRequest())
	require.NoError(t, err)
	assert.Equal(t, pred, again)

	r := validRequest()
	r.Tenure = 0
	r.HasComplaint = true
	r.DaysSinceLastOrder = 0
	r.CashbackAmount = 0
	pred, err = p.Predict(r)
	require.NoError(t, err)
	assert.Equal(t, Churn, pred.Result)
}
