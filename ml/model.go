package ml

import "errors"

var (
	ErrShapeMismatch   = errors.New("feature vector shape mismatch")
	ErrNotFitted       = errors.New("model not fitted")
	ErrUnsupportedKind = errors.New("unsupported artifact kind")
)

// Scaler is a fitted feature transformation.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
	NumFeatures() int
	Kind() string
}

// Classifier is a fitted model that maps a scaled vector to a class label.
type Classifier interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
	Kind() string
}

// FeatureNamer is implemented by artifacts that recorded the column names
// they were fitted on.
type FeatureNamer interface {
	FeatureNames() []string
}

// FeatureNamesOf returns the recorded column names of v, or nil.
func FeatureNamesOf(v interface{}) []string {
	if n, ok := v.(FeatureNamer); ok {
		return n.FeatureNames()
	}
	return nil
}

func checkShape(features []float64, want int) error {
	if len(features) != want {
		return shapeError(len(features), want)
	}
	return nil
}
