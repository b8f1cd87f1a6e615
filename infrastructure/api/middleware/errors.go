package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/groupnom/overture-import/infrastructure/api/jsonapi"
	"github.com/groupnom/overture-import/internal/database"
)

// ErrAPI is matched by every APIError.
var ErrAPI = errors.New("api error")

// APIError is an error with an HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// NewBadRequest creates a 400 APIError.
func NewBadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, nil)
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// Is reports whether target is ErrAPI.
func (e *APIError) Is(target error) bool { return target == ErrAPI }

// WriteError writes a JSON:API error document. Status is derived from the
// error: APIError carries its own, database.ErrNotFound maps to 404 and
// anything else is a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	}

	requestID := middleware.GetReqID(r.Context())
	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request error",
			slog.String("request_id", requestID),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	doc := jsonapi.NewErrorResponse(jsonapi.Error{
		ID:     requestID,
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	})
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
