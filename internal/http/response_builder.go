// Package http serves the JSON API over the expense services.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/csvio"
	"budgetbook/internal/log"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/services"
	"budgetbook/internal/store"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the response. A nil body writes only the status.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	data, err := json.Marshal(b.body)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(data)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates a JSON error body carrying the request ID.
func ErrorResponse(ctx context.Context, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: message, RequestID: trace.GetRequestID(ctx)})
}

func MethodNotAllowedError(ctx context.Context, allowedMethods string) *JSONResponseBuilder {
	return ErrorResponse(ctx, http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// statusFor maps service and domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrMissingAmount),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingCategory),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidPaymentDate),
		errors.Is(err, csvio.ErrHeaderMismatch),
		errors.Is(err, csvio.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, csvio.ErrRead), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and hides their detail from clients.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).LogError(r.Context(), "Request failed", err, op, nil)
		msg = http.StatusText(status)
	}
	ErrorResponse(r.Context(), status, msg).Write(w)
}
