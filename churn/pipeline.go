package churn

import (
	"fmt"
	"slices"

	"churnpredict/apperr"
	"churnpredict/ml"
)

// Result is the decoded outcome of a prediction.
type Result string

const (
	Churn   Result = "churn"
	NoChurn Result = "no_churn"
)

// Label is the text shown to the user.
func (r Result) Label() string {
	if r == Churn {
		return "Churn"
	}
	return "No Churn"
}

// Prediction is what Predict returns for one request.
type Prediction struct {
	Result Result  `json:"result"`
	Label  string  `json:"label"`
	Raw    float64 `json:"raw"`
}

// DefaultPositiveClass is the label the bundled artifacts use for churned
// customers.
const DefaultPositiveClass = 1.0

// Decode maps a raw classifier output to a Result. Only an exact match with
// the positive class counts as churn.
func Decode(raw, positiveClass float64) Result {
	if raw == positiveClass {
		return Churn
	}
	return NoChurn
}

// Pipeline runs validate, encode, scale, infer and decode over one request.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	scaler        ml.Scaler
	classifier    ml.Classifier
	positiveClass float64
}

// NewPipeline binds a loaded scaler and classifier to a positive class.
func NewPipeline(scaler ml.Scaler, classifier ml.Classifier, positiveClass float64) *Pipeline {
	return &Pipeline{
		scaler:        scaler,
		classifier:    classifier,
		positiveClass: positiveClass,
	}
}

// Predict scores one request. Invalid requests fail before scaling.
func (p *Pipeline) Predict(r Request) (Prediction, error) {
	if err := r.Validate(); err != nil {
		return Prediction{}, err
	}
	encoded := Encode(r)

	scaled, err := p.scale(encoded)
	if err != nil {
		return Prediction{}, err
	}

	raw, err := p.infer(scaled)
	if err != nil {
		return Prediction{}, err
	}

	result := Decode(raw, p.positiveClass)
	return Prediction{Result: result, Label: result.Label(), Raw: raw}, nil
}

func (p *Pipeline) scale(encoded []float64) ([]float64, error) {
	if names := ml.FeatureNamesOf(p.scaler); len(names) > 0 && !slices.Equal(names, featureNames) {
		return nil, apperr.Scaling(fmt.Errorf("scaler fitted on %v, pipeline encodes %v", names, featureNames))
	}
	scaled, err := p.scaler.Transform(encoded)
	if err != nil {
		return nil, apperr.Scaling(err)
	}
	if len(scaled) != len(encoded) {
		return nil, apperr.Scaling(fmt.Errorf("scaler returned %d features, want %d", len(scaled), len(encoded)))
	}
	return scaled, nil
}

func (p *Pipeline) infer(scaled []float64) (raw float64, err error) {
	if names := ml.FeatureNamesOf(p.classifier); len(names) > 0 && !slices.Equal(names, featureNames) {
		return 0, apperr.Inference(fmt.Errorf("classifier fitted on %v, pipeline encodes %v", names, featureNames))
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Inference(fmt.Errorf("classifier panicked: %v", rec))
		}
	}()
	raw, err = p.classifier.Predict(scaled)
	if err != nil {
		return 0, apperr.Inference(err)
	}
	return raw, nil
}
