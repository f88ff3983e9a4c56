package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/makebyjordan/chatbot-crm/internal/api"
)

type HTTPError = api.HTTPError

const maxBodyBytes = 1 << 20

type ApiMessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	return api.WriteJSON(w, status, v)
}

func MethodHandler(
	w http.ResponseWriter,
	r *http.Request,
	allowed map[string]func(http.ResponseWriter, *http.Request) error,
) error {
	if handler, ok := allowed[r.Method]; ok {
		return handler(w, r)
	}
	return &HTTPError{
		StatusCode: http.StatusMethodNotAllowed,
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed.",
		ErrorLog:   fmt.Errorf("method not allowed"),
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("Invalid request payload", fmt.Errorf("decode %s %s: %w", r.Method, r.URL.Path, err))
	}
	return nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("%s must be an integer", name), fmt.Errorf("parse %s=%q: %w", name, raw, err))
	}
	return n, nil
}

// pathID returns the single path segment after prefix.
func pathID(path, prefix string) (string, bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if trimmed == path {
		return "", false
	}
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return "", false
	}
	return trimmed, true
}

func badRequest(message string, err error) *HTTPError {
	return &HTTPError{
		StatusCode: http.StatusBadRequest,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		ErrorLog:   err,
	}
}

func internalError(err error) *HTTPError {
	return &HTTPError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		ErrorLog:   err,
	}
}

// statusFor maps the error codes shared by the service packages.
func statusFor(code string) (int, string) {
	switch code {
	case "validation_error":
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case "unauthorized":
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case "not_found":
		return http.StatusNotFound, "NOT_FOUND"
	case "conflict":
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// mapServiceError turns a service Error (code, message, cause) into an
// HTTPError. Internal errors never leak their message.
func mapServiceError(area, code, message string, cause error) error {
	errorLog := fmt.Errorf("%s: %s", area, message)
	if cause != nil {
		errorLog = fmt.Errorf("%s: %s: %w", area, message, cause)
	}

	status, apiCode := statusFor(code)
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	return &HTTPError{
		StatusCode: status,
		Code:       apiCode,
		Message:    message,
		ErrorLog:   errorLog,
	}
}
