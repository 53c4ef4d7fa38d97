package churn

// Column order the scaler and classifier were fitted on. Changing it, or the
// codes below, requires refitted artifacts.
var featureNames = []string{
	"Tenure",
	"Complain",
	"DaySinceLastOrder",
	"CashbackAmount",
	"MaritalStatus",
	"Gender",
}

// FeatureCount is the length of every encoded vector.
const FeatureCount = 6

// FeatureNames returns the column order Encode produces.
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

var maritalCodes = map[MaritalStatus]float64{
	Single:   1,
	Married:  2,
	Divorced: 3,
}

var genderCodes = map[Gender]float64{
	Male:   1,
	Female: 0,
}

// Encode maps a validated request onto the fixed-order feature vector.
func Encode(r Request) []float64 {
	complaint := 0.0
	if r.HasComplaint {
		complaint = 1
	}
	return []float64{
		r.Tenure,
		complaint,
		float64(r.DaysSinceLastOrder),
		r.CashbackAmount,
		maritalCodes[r.MaritalStatus],
		genderCodes[r.Gender],
	}
}
