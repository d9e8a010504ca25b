// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// envelope is the JSON body every error response uses.
type envelope struct {
	Error string `json:"error"`
}

// ErrorLogger pairs the response writing with the server-side log line so
// handlers stay one-liners: what the client sees and what ops sees are
// decided in one place.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: log}
}

// WriteJSON writes a bare JSON error without logging. For expected
// client mistakes that need no operator attention.
func WriteJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: msg})
}

// LogBadRequest logs at info (client error, not ours) and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, clientMsg string) {
	e.Log.Info(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	WriteJSON(w, http.StatusBadRequest, clientMsg)
}

// LogForbidden logs at info and responds 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, clientMsg string) {
	e.Log.Info(logMsg, zap.String("path", r.URL.Path))
	WriteJSON(w, http.StatusForbidden, clientMsg)
}

// LogNotFound responds 404 without logging; missing ids are routine.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, clientMsg string) {
	WriteJSON(w, http.StatusNotFound, clientMsg)
}

// LogConflict logs at info and responds 409. Used when a guarded update
// lost its race or a duplicate was attempted.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, logMsg string, err error, clientMsg string) {
	e.Log.Info(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	WriteJSON(w, http.StatusConflict, clientMsg)
}

// LogServerError logs at error and responds 500 with a generic message.
// The underlying error never reaches the client.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, clientMsg string) {
	e.Log.Error(logMsg, zap.String("path", r.URL.Path), zap.Error(err))
	if clientMsg == "" {
		clientMsg = "internal server error"
	}
	WriteJSON(w, http.StatusInternalServerError, clientMsg)
}
