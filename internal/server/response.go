package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	rterrors "github.com/matzehuels/reqtrace/pkg/errors"
)

var validate = validator.New()

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    rterrors.Code `json:"code"`
	Message string        `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := rterrors.GetCode(err)
	if code == "" {
		code = rterrors.ErrCodeInternal
	}
	status := rterrors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "err", err)
	}
	s.respondJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: rterrors.UserMessage(err)},
		RequestID: RequestID(r.Context()),
	})
}

// decode reads a JSON body into v and validates its struct tags. It writes
// the error response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, rterrors.New(rterrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.respondError(w, r, rterrors.Wrap(rterrors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	if err := validate.Struct(v); err != nil {
		s.respondError(w, r, rterrors.New(rterrors.ErrCodeInvalidInput, "%s", validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return field + " is invalid"
	}
}
