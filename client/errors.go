package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// NetworkError is returned when no response was received: transport, DNS or timeout failures.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + " " + e.URL + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is returned for any non-2xx response not otherwise classified.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("http %d %s", e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NotFoundError is returned for 404 responses.
type NotFoundError struct {
	HTTPError
}

func (e *NotFoundError) Error() string { return "not found" }

func (e *NotFoundError) Unwrap() error { return &e.HTTPError }

// ValidationError is returned for 422 responses.
type ValidationError struct {
	HTTPError
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for i, f := range fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(f + ": " + strings.Join(e.FieldErrors[f], ", "))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return &e.HTTPError }

// errorBody is the shape of a 422 response body.
type errorBody struct {
	Errors map[string][]string `json:"errors"`
}

// responseError classifies a non-2xx response.
func responseError(status int, body string) error {
	httpErr := HTTPError{Status: status, Body: strings.TrimSpace(body)}
	switch status {
	case http.StatusNotFound:
		return &NotFoundError{HTTPError: httpErr}
	case http.StatusUnprocessableEntity:
		var eb errorBody
		_ = json.Unmarshal([]byte(body), &eb) // a malformed body still is a validation failure
		return &ValidationError{HTTPError: httpErr, FieldErrors: eb.Errors}
	}
	return &httpErr
}
