package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rewired-gh/whetherai/internal/bayes"
	"github.com/rewired-gh/whetherai/internal/logger"
	"github.com/rewired-gh/whetherai/internal/openweather"
)

const maxRequestBodySize = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// requestError is a client mistake in the request itself.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps err to a status code and writes {"error": message}.
// Internal details of unexpected errors are logged, not returned.
func writeError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	var evErr *bayes.EvidenceError
	var apiErr *openweather.APIError

	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: reqErr.msg})
	case errors.As(err, &evErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: evErr.Error()})
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: apiErr.Error()})
	case errors.Is(err, openweather.ErrUnavailable):
		logger.Warn("Weather source unavailable: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: openweather.ErrUnavailable.Error()})
	default:
		logger.Error("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "an unexpected error occurred"})
	}
}

// decodeJSON reads a single JSON object into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body must not be empty")
		case errors.As(err, &maxBytesErr):
			return badRequest("request body is too large")
		case errors.As(err, &syntaxErr):
			return badRequest("malformed JSON in request body")
		case errors.As(err, &typeErr):
			return badRequest("invalid value for field %s", typeErr.Field)
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			return badRequest("unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return badRequest("invalid request body")
		}
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return badRequest("%s", describeValidation(verrs[0]))
		}
		return badRequest("invalid request: %v", err)
	}
	return nil
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
