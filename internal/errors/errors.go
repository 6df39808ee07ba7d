// Package errors defines the gateway's error taxonomy and the single place
// where errors are turned into HTTP responses. The wire shape is the flat
// {"error": string} object every route speaks; codes exist for logging,
// metrics, and status mapping only and are never sent to callers.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/prooflens/prooflens/internal/metrics"
	"github.com/prooflens/prooflens/internal/observability"
	"github.com/prooflens/prooflens/internal/server/middleware"
)

// Code identifies an error class for status mapping and observability.
type Code string

const (
	CodeMalformedInput   Code = "MALFORMED_INPUT"
	CodePayloadTooLarge  Code = "PAYLOAD_TOO_LARGE"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeUpstream         Code = "UPSTREAM_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error carries a taxonomy code, a caller-safe message, and optionally the
// wrapped cause. Status overrides the code's default HTTP status when set
// (used to relay an upstream status verbatim).
type Error struct {
	Code    Code
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Client errors (400-level)

func NewMalformedInput(message string) *Error {
	return &Error{Code: CodeMalformedInput, Message: message}
}

func NewPayloadTooLarge(message string) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: message}
}

func NewMethodNotAllowed(message string) *Error {
	return &Error{Code: CodeMethodNotAllowed, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewRateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Message: message}
}

// Server errors (500-level)

func NewInternal(message string) *Error {
	return &Error{Code: CodeInternal, Message: message}
}

func WrapInternal(err error, message string) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// NewUpstream relays a non-success upstream status. A zero status maps to
// 502 through the code table.
func NewUpstream(status int, message string, err error) *Error {
	return &Error{Code: CodeUpstream, Message: message, Status: status, Err: err}
}

// HTTPStatusFromCode resolves the HTTP status code for an error code.
func HTTPStatusFromCode(code Code) int {
	switch code {
	case CodeMalformedInput, CodePayloadTooLarge:
		return http.StatusBadRequest
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus resolves the response status for an error, honoring an explicit
// relay status when one is set.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return HTTPStatusFromCode(e.Code)
}

// HTTPErrorResponse is the wire shape of every error body.
type HTTPErrorResponse struct {
	Error string `json:"error"`
}

// Ensure normalizes any error into an *Error without leaking internal detail
// to callers.
func Ensure(err error) *Error {
	if err == nil {
		return NewInternal("unexpected nil error")
	}
	if appErr, ok := err.(*Error); ok && appErr != nil {
		return appErr
	}
	return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
}

// RespondWithError normalizes the supplied error, logs it, records metrics,
// and writes the JSON response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := Ensure(err)
	status := appErr.HTTPStatus()

	logHTTPError(r, appErr, status)
	metrics.RecordError(string(appErr.Code), status)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{Error: appErr.Message})
}

// RespondWithErrorValue writes an error body whose "error" value is a raw
// JSON document rather than a string. Used to relay upstream error payloads
// untouched.
func RespondWithErrorValue(w http.ResponseWriter, r *http.Request, status int, value json.RawMessage) {
	logHTTPError(r, &Error{Code: CodeUpstream, Message: "upstream error relayed"}, status)
	metrics.RecordError(string(CodeUpstream), status)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error json.RawMessage `json:"error"`
	}{Error: value})
}

func logHTTPError(r *http.Request, appErr *Error, status int) {
	if observability.ServerLogger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", status),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	if r != nil {
		fields = append(fields,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
	}

	switch {
	case status >= http.StatusInternalServerError:
		observability.ServerLogger.Error(appErr.Message, fields...)
	case status == http.StatusTooManyRequests:
		observability.ServerLogger.Info(appErr.Message, fields...)
	default:
		observability.ServerLogger.Warn(appErr.Message, fields...)
	}
}
