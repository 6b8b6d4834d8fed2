package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is an error response of the planning API. Problem responses
// fill Title, Detail and Code; health responses fill Detail only.
type APIError struct {
	StatusCode int    `json:"status"`
	Title      string `json:"title,omitempty"`
	Detail     string `json:"detail,omitempty"`

	// Code is the RAO error code, when the failure comes from RAO.
	Code string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", msg, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

// IsNotFound reports whether the tape, media type or route is unknown.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnavailable reports whether the server could not serve the request now.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// IsNotFound reports whether err is an APIError for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{}
	if json.Unmarshal(body, apiErr) == nil && (apiErr.Title != "" || apiErr.Detail != "") {
		apiErr.StatusCode = status
		return apiErr
	}

	// Health endpoints answer with an envelope instead of a problem.
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return &APIError{StatusCode: status, Detail: envelope.Error}
	}

	return &APIError{StatusCode: status, Detail: strings.TrimSpace(string(body))}
}
