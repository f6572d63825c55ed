package web

// errors.go renders every handler error the same way:
//
//  1. The HTTP status is derived from the error type (statusFor).
//  2. service.MapError supplies the user message, action and support code.
//  3. The technical error is logged with the request ID; only the mapped
//     message reaches the client.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/pricematch/internal/domain"
	"github.com/JonMunkholm/pricematch/internal/logging"
	"github.com/JonMunkholm/pricematch/internal/runlock"
	"github.com/JonMunkholm/pricematch/internal/service"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrFormat),
		errors.Is(err, domain.ErrUnsupportedExportFormat),
		errors.Is(err, service.ErrSupplierRequired),
		errors.Is(err, service.ErrNoFile),
		errors.Is(err, service.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmptyExport):
		return http.StatusNotFound
	case errors.Is(err, runlock.ErrLocked), errors.Is(err, runlock.ErrLeaseLost):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped JSON error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := service.MapError(err)
	if errors.As(err, new(*http.MaxBytesError)) {
		msg = service.MapError(service.ErrFileTooLarge)
	}

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	// FormatError reasons describe the file, not the server; pass them on.
	errText := msg.Message
	var fe *domain.FormatError
	if errors.As(err, &fe) {
		errText = fe.Error()
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errText,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
