package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/topochart/pkg/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errorResponse{Error: errors.UserMessage(err), Code: code}, statusFor(err))
}

// fail writes err and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := statusFor(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, err)
}

// decode reads a JSON request body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, s)
	}
	return v, nil
}

// queryUint parses an optional unsigned query parameter.
func queryUint(r *http.Request, name string) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, s)
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", name, s)
	}
	return v, nil
}
