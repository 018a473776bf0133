// Package httputil provides utility functions for HTTP servers.
package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	base10    = 10
	int64Size = 64
)

// ErrNotAnInteger is returned when a lenient numeric field holds neither an integer nor a numeric string.
var ErrNotAnInteger = errors.New("not an integer")

// IDFromString parses an int64 ID from the given string.
func IDFromString(s string) (int64, error) {
	id, err := strconv.ParseInt(s, base10, int64Size)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", s, err)
	}

	return id, nil
}

// PageFromQuery returns the page query parameter. Absent or non-numeric values yield page 1.
// Numbers too large for an int are clamped, so they still address a page beyond the data.
func PageFromQuery(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	page, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(raw, "-") {
				return math.MinInt
			}

			return math.MaxInt
		}

		return 1
	}

	return page
}

// EncodeJSON encodes v to JSON, sets status, and writes it to w.
func EncodeJSON[T any](w http.ResponseWriter, statusCode int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	return nil
}

// DecodeJSON decodes JSON from r.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode json: %w", err)
	}

	return v, nil
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// StatusMessage returns the human-readable message for an error status.
func StatusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "Not found"
	case http.StatusUnprocessableEntity:
		return "Unprocessable Entity"
	case http.StatusMethodNotAllowed:
		return "Method Not Allowed"
	default:
		return http.StatusText(statusCode)
	}
}

// EncodeError writes the error payload for statusCode to w.
func EncodeError(w http.ResponseWriter, statusCode int) error {
	return EncodeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   statusCode,
		Message: StatusMessage(statusCode),
	})
}

// FlexInt is an integer that unmarshals from a JSON number or a numeric JSON string.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("%w: %s", ErrNotAnInteger, s)
		}
		s = str
	}

	v, err := strconv.ParseInt(s, base10, int64Size)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotAnInteger, s)
	}
	*n = FlexInt(v)

	return nil
}

// StatusRecorder wraps a http.ResponseWriter and records the status code written to it.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

// NewStatusRecorder returns a StatusRecorder defaulting to 200.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

// WriteHeader implements http.ResponseWriter.
func (r *StatusRecorder) WriteHeader(statusCode int) {
	r.Status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
