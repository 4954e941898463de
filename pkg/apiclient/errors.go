package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status  int
	Message string
	Errors  map[string]string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// HTTPStatus implements the upstream status lookup used by error dumps.
func (e *StatusError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// FieldErrors returns the field-keyed validation messages, if any.
func (e *StatusError) FieldErrors() map[string]string {
	if e == nil {
		return nil
	}
	return e.Errors
}

// StatusOf returns the backend HTTP status carried by err, or 0 when err did not come from a response.
func StatusOf(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}

// FieldErrorsOf returns the backend validation messages carried by err.
func FieldErrorsOf(err error) map[string]string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Errors
	}
	return nil
}

// nonRetryableStatuses fail fast.
var nonRetryableStatuses = map[int]struct{}{
	http.StatusBadRequest:   {},
	http.StatusUnauthorized: {},
	http.StatusForbidden:    {},
	http.StatusNotFound:     {},
}

// IsRetryableStatus reports whether a failed response with status deserves another attempt.
func IsRetryableStatus(status int) bool {
	_, fatal := nonRetryableStatuses[status]
	return !fatal
}

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

func parseStatusError(status int, body []byte) *StatusError {
	statusErr := &StatusError{Status: status}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		statusErr.Message = strings.TrimSpace(parsed.Message)
		if statusErr.Message == "" {
			statusErr.Message = strings.TrimSpace(parsed.Error)
		}
		statusErr.Errors = parseFieldErrors(parsed.Errors)
	}
	if statusErr.Message == "" {
		statusErr.Message = http.StatusText(status)
	}
	return statusErr
}

// parseFieldErrors accepts {field: msg}, {field: [msg...]} and [{field, message}].
func parseFieldErrors(raw json.RawMessage) map[string]string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	out := map[string]string{}
	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil
		}
		for field, value := range fields {
			if msg := firstMessage(value); msg != "" {
				out[field] = msg
			}
		}
	case '[':
		var items []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		for _, item := range items {
			if item.Field == "" || item.Message == "" {
				continue
			}
			if _, seen := out[item.Field]; !seen {
				out[item.Field] = item.Message
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstMessage(value json.RawMessage) string {
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(value, &many); err == nil && len(many) > 0 {
		return strings.TrimSpace(many[0])
	}
	return ""
}
