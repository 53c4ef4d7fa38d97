// Package apperr defines the error taxonomy shared by the artifact loader,
// the prediction pipeline and the transports that render failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies one class of failure.
type Kind string

const (
	KindArtifactUnavailable Kind = "ARTIFACT_UNAVAILABLE"
	KindArtifactCorrupt     Kind = "ARTIFACT_CORRUPT"
	KindInvalidRequest      Kind = "INVALID_REQUEST"
	KindScaling             Kind = "SCALING_ERROR"
	KindInference           Kind = "INFERENCE_ERROR"
	KindUnknown             Kind = "UNKNOWN"
)

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrArtifactUnavailable = &Error{Kind: KindArtifactUnavailable}
	ErrArtifactCorrupt     = &Error{Kind: KindArtifactCorrupt}
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
	ErrScaling             = &Error{Kind: KindScaling}
	ErrInference           = &Error{Kind: KindInference}
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured error returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Field, f.Message)
		if i == len(e.Fields)-1 {
			b.WriteString(")")
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ArtifactUnavailable reports that an artifact source could not be read.
func ArtifactUnavailable(locator string, err error) *Error {
	return &Error{
		Kind:    KindArtifactUnavailable,
		Message: "artifact source unavailable",
		Details: locator,
		Err:     err,
	}
}

// ArtifactCorrupt reports that fetched bytes are not a usable artifact.
func ArtifactCorrupt(locator string, err error) *Error {
	return &Error{
		Kind:    KindArtifactCorrupt,
		Message: "artifact could not be decoded",
		Details: locator,
		Err:     err,
	}
}

// InvalidRequest reports caller-supplied fields that failed validation.
func InvalidRequest(fields []FieldError) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Message: "invalid request",
		Fields:  fields,
	}
}

// Scaling reports that the scaler rejected an encoded vector.
func Scaling(err error) *Error {
	return &Error{
		Kind:    KindScaling,
		Message: "scaler rejected the feature vector",
		Err:     err,
	}
}

// Inference reports that the classifier failed on a scaled vector.
func Inference(err error) *Error {
	return &Error{
		Kind:    KindInference,
		Message: "classifier failed",
		Err:     err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether the caller can succeed by resubmitting a corrected
// request. Artifact and version-skew failures need an operator.
func Retryable(kind Kind) bool {
	return kind == KindInvalidRequest
}

// HTTPStatus maps a Kind to the status code used by the HTTP API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindArtifactUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
