package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load: %w", ArtifactUnavailable("/tmp/scaler.json", errors.New("no such file")))

	assert.True(t, errors.Is(err, ErrArtifactUnavailable))
	assert.False(t, errors.Is(err, ErrArtifactCorrupt))
	assert.Equal(t, KindArtifactUnavailable, KindOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Inference(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INFERENCE_ERROR")
	assert.Contains(t, err.Error(), "boom")
}

func TestInvalidRequestMessageListsFields(t *testing.T) {
	err := InvalidRequest([]FieldError{
		{Field: "tenure", Message: "must be >= 0"},
		{Field: "gender", Message: "unknown value"},
	})

	assert.Equal(t, "INVALID_REQUEST: invalid request (tenure: must be >= 0; gender: unknown value)", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindScaling, KindOf(Scaling(nil)))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidRequest:      http.StatusBadRequest,
		KindArtifactUnavailable: http.StatusServiceUnavailable,
		KindArtifactCorrupt:     http.StatusInternalServerError,
		KindScaling:             http.StatusInternalServerError,
		KindInference:           http.StatusInternalServerError,
		KindUnknown:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(KindInvalidRequest))
	assert.False(t, Retryable(KindArtifactUnavailable))
	assert.False(t, Retryable(KindScaling))
}
