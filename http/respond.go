package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"churnpredict/apperr"
)

type errorBody struct {
	Code      apperr.Kind         `json:"code"`
	Message   string              `json:"message"`
	Details   []apperr.FieldError `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError renders err with the status its kind maps to. Causes of
// server-side failures are logged, not returned to the caller.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = &apperr.Error{Kind: apperr.KindUnknown, Message: "internal error", Err: err}
	}
	status := apperr.HTTPStatus(e.Kind)
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("code", string(e.Kind)),
			zap.Error(err))
	}
	writeError(w, r, status, e)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, e *apperr.Error) {
	respondJSON(w, status, errorResponse{Error: errorBody{
		Code:      e.Kind,
		Message:   e.Message,
		Details:   e.Fields,
		RequestID: GetRequestID(r.Context()),
	}})
}
