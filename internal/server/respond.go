package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/pondera/pkg/errors"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// respondError maps error codes to HTTP statuses. Internal errors are
// logged and not echoed.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	s.respondJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      string(errors.GetCode(err)),
		Message:   msg,
		RequestID: RequestID(r.Context()),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidMode,
		errors.ErrCodeInvalidNode, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// validationError turns the first validator failure into an INVALID_INPUT
// error with a readable message.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	e := verrs[0]
	var msg string
	switch e.Tag() {
	case "required":
		msg = "is required"
	case "min", "gte":
		msg = fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		msg = fmt.Sprintf("must not exceed %s", e.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", e.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", e.Tag())
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s %s", e.Namespace(), msg)
}
