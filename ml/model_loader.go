package ml

import (
	"encoding/json"
	"errors"
	"fmt"
)

type envelope struct {
	Kind string `json:"kind"`
}

type validator interface {
	validate() error
}

func readKind(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("parse artifact: %w", err)
	}
	if env.Kind == "" {
		return "", errors.New("artifact has no kind")
	}
	return env.Kind, nil
}

func decodeInto(data []byte, v validator) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact: %w", err)
	}
	return v.validate()
}

// DecodeScaler builds a Scaler from a serialized artifact.
func DecodeScaler(data []byte) (Scaler, error) {
	kind, err := readKind(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindStandardScaler:
		s := &StandardScaler{}
		if err := decodeInto(data, s); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return s, nil
	case KindMinMaxScaler:
		s := &MinMaxScaler{}
		if err := decodeInto(data, s); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: scaler %q", ErrUnsupportedKind, kind)
	}
}

// DecodeClassifier builds a Classifier from a serialized artifact.
func DecodeClassifier(data []byte) (Classifier, error) {
	kind, err := readKind(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindDecisionTree:
		m := &DecisionTree{}
		if err := decodeInto(data, m); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return m, nil
	case KindLogisticRegression:
		m := &LogisticRegression{Classes: [2]float64{0, 1}}
		if err := decodeInto(data, m); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: classifier %q", ErrUnsupportedKind, kind)
	}
}
