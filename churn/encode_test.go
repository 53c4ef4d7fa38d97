package churn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	got := Encode(validRequest())
	assert.Equal(t, []float64{12, 0, 5, 150, 2, 0}, got)
	assert.Len(t, got, FeatureCount)
}

func TestEncodeCodes(t *testing.T) {
	r := validRequest()
	r.HasComplaint = true
	r.MaritalStatus = Divorced
	r.Gender = Male
	assert.Equal(t, []float64{12, 1, 5, 150, 3, 1}, Encode(r))

	r.MaritalStatus = Single
	assert.Equal(t, 1.0, Encode(r)[4])
}

func TestEncodeIsDeterministic(t *testing.T) {
	r := validRequest()
	assert.Equal(t, Encode(r), Encode(r))
}

func TestFeatureNamesIsACopy(t *testing.T) {
	names := FeatureNames()
	assert.Len(t, names, FeatureCount)
	assert.Equal(t, "Tenure", names[0])
	assert.Equal(t, "Gender", names[5])

	names[0] = "changed"
	assert.Equal(t, "Tenure", FeatureNames()[0])
}
