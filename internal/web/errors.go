package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client gets the mapped UserMessage as
// JSON on /api routes and as an HTML page elsewhere.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/shiprec/internal/core"
	"github.com/JonMunkholm/shiprec/internal/exchange"
	"github.com/JonMunkholm/shiprec/internal/logging"
	"github.com/JonMunkholm/shiprec/internal/store"
	"github.com/JonMunkholm/shiprec/internal/web/templates"
)

var (
	errNoFile      = errors.New("no file provided")
	errFileTooBig  = errors.New("file too large")
	errMissingPath = errors.New("missing path parameter")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownKind),
		errors.Is(err, core.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrJobsBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile), errors.Is(err, errMissingPath):
		return http.StatusBadRequest
	case errors.Is(err, exchange.ErrInvalidRecordFormat),
		errors.Is(err, exchange.ErrInvalidFieldValue),
		errors.Is(err, exchange.ErrInflation),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request error", "path", r.URL.Path, "status", status, "error", err, "code", msg.Code)
	} else {
		logger.Warn("request error", "path", r.URL.Path, "status", status, "error", err, "code", msg.Code)
	}

	// a partially prepared download must not keep its attachment header
	w.Header().Del("Content-Disposition")

	if wantsJSON(r) {
		text := err.Error()
		if status >= http.StatusInternalServerError {
			text = msg.Message
		}
		writeJSON(w, status, ErrorResponse{
			Error:   text,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
			Detail:  msg.Detail,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON reports whether the client should get a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
