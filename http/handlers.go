package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"go.uber.org/zap"

	"churnpredict/apperr"
	"churnpredict/churn"
	"churnpredict/monitoring"
)

// Predictor is the part of churn.Service the handlers use.
type Predictor interface {
	Predict(ctx context.Context, r churn.Request) (churn.Prediction, error)
	Describe(ctx context.Context) (churn.ModelInfo, error)
	Ready() bool
}

// Handlers serves the prediction API.
type Handlers struct {
	svc          Predictor
	metrics      *monitoring.Metrics
	log          *zap.Logger
	maxBodyBytes int64
}

// RegisterHandlers mounts every API route on mux.
func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("POST /api/predict", withRoute("/api/predict", h.handlePredict))
	mux.HandleFunc("POST /api/predict/form", withRoute("/api/predict/form", h.handlePredictForm))
	mux.HandleFunc("GET /api/model", withRoute("/api/model", h.handleModel))
	mux.HandleFunc("GET /api/health", withRoute("/api/health", h.handleHealth))
	mux.HandleFunc("GET /api/ready", withRoute("/api/ready", h.handleReady))
	mux.HandleFunc("GET /metrics", withRoute("/metrics", h.metrics.Handler().ServeHTTP))
}

// JSON body keys; every one must be present and non-null.
var requestKeys = []string{
	"tenure",
	"has_complaint",
	"days_since_last_order",
	"cashback_amount",
	"marital_status",
	"gender",
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeJSON(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.predict(w, r, req)
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request) (churn.Request, error) {
	var req churn.Request
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.bodyLimit()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, invalidBody(fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
		}
		return req, invalidBody("could not read body")
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return req, invalidBody("body must be a JSON object")
	}
	var missing []apperr.FieldError
	for _, k := range requestKeys {
		if v, ok := present[k]; !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			missing = append(missing, apperr.FieldError{Field: k, Message: "is required"})
		}
	}
	if len(missing) > 0 {
		return req, apperr.InvalidRequest(missing)
	}

	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return req, apperr.InvalidRequest([]apperr.FieldError{{
				Field:   typeErr.Field,
				Message: "must be " + describeType(typeErr.Type.Kind()),
			}})
		}
		return req, invalidBody(err.Error())
	}
	return req, nil
}

// handlePredictForm takes the fields under their form names (Tenure, Complain, ...),
// with Complain answered Yes or No.
func (h *Handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.bodyLimit())
	if err := r.ParseForm(); err != nil {
		h.respondError(w, r, invalidBody("could not parse form"))
		return
	}
	req, err := parseForm(r.PostForm)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.predict(w, r, req)
}

type formValues interface {
	Get(key string) string
	Has(key string) bool
}

func parseForm(form formValues) (churn.Request, error) {
	var (
		req    churn.Request
		fields []apperr.FieldError
	)
	field := func(name string, parse func(string) error) {
		if !form.Has(name) || form.Get(name) == "" {
			fields = append(fields, apperr.FieldError{Field: name, Message: "is required"})
			return
		}
		if err := parse(form.Get(name)); err != nil {
			fields = append(fields, apperr.FieldError{Field: name, Message: err.Error()})
		}
	}

	field("Tenure", func(v string) (err error) {
		req.Tenure, err = parseNumber(v)
		return err
	})
	field("Complain", func(v string) (err error) {
		req.HasComplaint, err = churn.ParseYesNo(v)
		return err
	})
	field("DaySinceLastOrder", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("must be a whole number")
		}
		req.DaysSinceLastOrder = n
		return nil
	})
	field("CashbackAmount", func(v string) (err error) {
		req.CashbackAmount, err = parseNumber(v)
		return err
	})
	field("MaritalStatus", func(v string) (err error) {
		req.MaritalStatus, err = churn.ParseMaritalStatus(v)
		return err
	})
	field("Gender", func(v string) (err error) {
		req.Gender, err = churn.ParseGender(v)
		return err
	})

	if len(fields) > 0 {
		return req, apperr.InvalidRequest(fields)
	}
	return req, nil
}

func describeType(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "true or false"
	case reflect.Int:
		return "a whole number"
	case reflect.Float64:
		return "a number"
	}
	return "a string"
}

func parseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return f, nil
}

func (h *Handlers) predict(w http.ResponseWriter, r *http.Request, req churn.Request) {
	pred, err := h.svc.Predict(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

func (h *Handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Describe(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": h.metrics.Uptime().Truncate(time.Second).String(),
	})
}

func (h *Handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Ready() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handlers) bodyLimit() int64 {
	if h.maxBodyBytes > 0 {
		return h.maxBodyBytes
	}
	return DefaultServerConfig().MaxBodyBytes
}

func invalidBody(msg string) error {
	return apperr.InvalidRequest([]apperr.FieldError{{Field: "body", Message: msg}})
}
