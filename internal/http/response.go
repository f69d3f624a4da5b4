// Package http provides the JSON API server for the ledger service.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the mapping from domain errors to HTTP status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"registro/internal/core"
	"registro/internal/session"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the payload to serialize.
func (b *JSONResponseBuilder) Body(payload any) *JSONResponseBuilder {
	b.payload = payload
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		_ = json.NewEncoder(w).Encode(b.payload)
	}
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UpstreamError creates a 502 Bad Gateway response for collaborator failures.
func UpstreamError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadGateway, message)
}

// writeLedgerError maps domain errors from ledger operations onto status
// codes: validation failures are 422 with the offending field, a missing id
// is 404, a duplicate save is 409. Anything else is a collaborator failure.
func writeLedgerError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		NewJSONResponse().
			Status(http.StatusUnprocessableEntity).
			Body(errorBody{Error: verr.Error(), Field: verr.Field}).
			Write(w)
	case errors.Is(err, core.ErrNotFound):
		ErrorResponse(http.StatusNotFound, "entry not found").Write(w)
	case errors.Is(err, session.ErrSaveInFlight):
		ErrorResponse(http.StatusConflict, "a save is already in progress").Write(w)
	default:
		UpstreamError(err.Error()).Write(w)
	}
}
