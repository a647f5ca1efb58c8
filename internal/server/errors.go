package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Messages returned to clients.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgConversionFailed = "Failed to convert file"
	msgTooLarge         = "File too large"
)

// ValidationError is a client error whose message is safe to show.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// ConversionError wraps a failure inside the conversion pipeline.
// The cause is logged, the client only sees msgConversionFailed.
type ConversionError struct {
	Op  string
	Err error
}

func (e *ConversionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func badRequest(msg string) error {
	return &ValidationError{Status: http.StatusBadRequest, Message: msg}
}

func tooLarge() error {
	return &ValidationError{Status: http.StatusRequestEntityTooLarge, Message: msgTooLarge}
}

// invalidFileMessage returns the 400 message for an endpoint expecting ext.
func invalidFileMessage(ext string) string {
	return "Please upload a valid " + ext + " file"
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps err to a status and a JSON body.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, ve.Status, errorBody{Error: ve.Message})
		return
	}

	level := slog.LevelError
	if r.Context().Err() != nil {
		// Client went away; nothing will read the response.
		level = slog.LevelWarn
	}
	logger.LogAttrs(r.Context(), level, "conversion failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgConversionFailed})
}
