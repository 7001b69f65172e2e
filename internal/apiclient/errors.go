package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultErrorMessage is shown when the backend gives no message.
const DefaultErrorMessage = "Error occurred"

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message returns the text a view should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return DefaultErrorMessage
		}
		return apiErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Request cancelled"
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return "Network Error"
	}
	return err.Error()
}

// IsStatus reports whether err is a backend response with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// extractMessage pulls a human message out of an error payload. It accepts
// {"message": "..."}, {"error": "..."} and {"error": {"message": "..."}}.
func extractMessage(payload []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return DefaultErrorMessage
	}

	if msg := rawString(fields["message"]); msg != "" {
		return msg
	}
	if raw, ok := fields["error"]; ok {
		if msg := rawString(raw); msg != "" {
			return msg
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return DefaultErrorMessage
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
