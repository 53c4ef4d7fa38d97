// Package churn turns one customer record into a churn / no-churn call using
// a fitted scaler and classifier.
package churn

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"churnpredict/apperr"
)

// MaritalStatus is one of Single, Married or Divorced.
type MaritalStatus string

const (
	Single   MaritalStatus = "Single"
	Married  MaritalStatus = "Married"
	Divorced MaritalStatus = "Divorced"
)

// Gender is Male or Female.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

var fold = cases.Fold()

// ParseMaritalStatus accepts any casing of the declared values.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch fold.String(strings.TrimSpace(s)) {
	case "single":
		return Single, nil
	case "married":
		return Married, nil
	case "divorced":
		return Divorced, nil
	}
	return "", fmt.Errorf("unknown marital status %q", s)
}

// ParseGender accepts any casing of the declared values.
func ParseGender(s string) (Gender, error) {
	switch fold.String(strings.TrimSpace(s)) {
	case "male":
		return Male, nil
	case "female":
		return Female, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// ParseYesNo reads the complaint answer the way the input form offers it.
func ParseYesNo(s string) (bool, error) {
	switch fold.String(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected Yes or No, got %q", s)
}

// Request is one customer record.
type Request struct {
	Tenure             float64       `json:"tenure"`
	HasComplaint       bool          `json:"has_complaint"`
	DaysSinceLastOrder int           `json:"days_since_last_order"`
	CashbackAmount     float64       `json:"cashback_amount"`
	MaritalStatus      MaritalStatus `json:"marital_status"`
	Gender             Gender        `json:"gender"`
}

// UnmarshalJSON normalises enum casing; unknown values are kept verbatim so
// Validate can report them per field.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if m, err := ParseMaritalStatus(string(p.MaritalStatus)); err == nil {
		p.MaritalStatus = m
	}
	if g, err := ParseGender(string(p.Gender)); err == nil {
		p.Gender = g
	}
	*r = Request(p)
	return nil
}

// Validate rejects negative or non-finite numbers and undeclared enum values.
func (r Request) Validate() error {
	var fields []apperr.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperr.FieldError{Field: field, Message: msg})
	}

	if msg := checkAmount(r.Tenure); msg != "" {
		add("tenure", msg)
	}
	if r.DaysSinceLastOrder < 0 {
		add("days_since_last_order", "must be >= 0")
	}
	if msg := checkAmount(r.CashbackAmount); msg != "" {
		add("cashback_amount", msg)
	}
	switch r.MaritalStatus {
	case Single, Married, Divorced:
	default:
		add("marital_status", fmt.Sprintf("must be one of Single, Married, Divorced, got %q", r.MaritalStatus))
	}
	switch r.Gender {
	case Male, Female:
	default:
		add("gender", fmt.Sprintf("must be one of Male, Female, got %q", r.Gender))
	}

	if len(fields) > 0 {
		return apperr.InvalidRequest(fields)
	}
	return nil
}

func checkAmount(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "must be a finite number"
	case v < 0:
		return "must be >= 0"
	}
	return ""
}
