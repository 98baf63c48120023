package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/shared"
)

const problemTypeBase = "https://setlist.dev/errors/"

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func newProblem(status int, slug, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + slug,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func NewValidationError(field, message string) *ProblemDetails {
	p := newProblem(http.StatusUnprocessableEntity, "validation", message)
	if field != "" {
		p.Errors = []FieldError{{Field: field, Message: message}}
		p.Detail = fmt.Sprintf("%s: %s", field, message)
	}
	return p
}

func NewUnauthorizedError(detail string) *ProblemDetails {
	return newProblem(http.StatusUnauthorized, "unauthorized", detail)
}

func NewForbiddenError(detail string) *ProblemDetails {
	return newProblem(http.StatusForbidden, "forbidden", detail)
}

func NewNotFoundError(detail string) *ProblemDetails {
	return newProblem(http.StatusNotFound, "not-found", detail)
}

func NewConflictError(detail string) *ProblemDetails {
	return newProblem(http.StatusConflict, "conflict", detail)
}

func NewInternalError() *ProblemDetails {
	return newProblem(http.StatusInternalServerError, "internal", "an unexpected error occurred")
}

// problemFor maps an error onto the response taxonomy.
//
// Anything not wrapping a known sentinel is internal and its message is not exposed.
func problemFor(err error) *ProblemDetails {
	var p *ProblemDetails
	switch {
	case errors.As(err, &p):
		return p
	case errors.Is(err, shared.ErrValidation):
		return NewValidationError("", publicDetail(err, shared.ErrValidation))
	case errors.Is(err, shared.ErrUnauthorized):
		return NewUnauthorizedError(publicDetail(err, shared.ErrUnauthorized))
	case errors.Is(err, shared.ErrForbidden):
		return NewForbiddenError(publicDetail(err, shared.ErrForbidden))
	case errors.Is(err, shared.ErrNotFound):
		return NewNotFoundError(publicDetail(err, shared.ErrNotFound))
	case errors.Is(err, shared.ErrConflict):
		return NewConflictError(publicDetail(err, shared.ErrConflict))
	default:
		return NewInternalError()
	}
}

// publicDetail strips the sentinel prefix from "sentinel: detail" messages.
func publicDetail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

// writeError writes err as a problem document, logging internal errors with the request id.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	p := problemFor(err)
	if p.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err, "method", r.Method, "path", r.URL.Path, "request_id", GetRequestID(r.Context()))
	}
	p.Instance = r.URL.Path
	p.WriteJSON(w)
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads an optional JSON object body into v; an empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewValidationError(typeErr.Field, fmt.Sprintf("must be %s", typeErr.Type))
		}
		return NewValidationError("", "request body must be a JSON object")
	}
	return nil
}
