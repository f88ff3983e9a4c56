package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc wraps f with CORS and access logging, applies the route
// middleware (authentication, rate limiting) and runs f on the request queue.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, routeMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		var err error
		if s.requestQueueManager != nil {
			if err = s.requestQueueManager.EnqueueJob(r.Context(), job); err == nil {
				err = <-errc
			} else {
				err = queueError(err)
			}
		} else {
			err = job.Fn()
		}

		if err != nil {
			s.writeError(w, r, err)
		}
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(s.cors),
		middleware.Logging(s.logger),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		if len(routeMiddleware) > 0 {
			middleware.Chain(baseHandler, routeMiddleware...)(w, r)
			return
		}
		baseHandler(w, r)
	}

	return middleware.Chain(finalHandler, middlewares...)
}

func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		s.logger.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error", Code: "INTERNAL_ERROR"})
		return
	}

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", httpErr.StatusCode}
	if httpErr.ErrorLog != nil {
		attrs = append(attrs, "error", httpErr.ErrorLog)
	}
	if httpErr.StatusCode >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Debug("request rejected", attrs...)
	}

	WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message, Code: httpErr.Code})
}

// queueError turns a job that never reached a worker into a 503.
func queueError(err error) *HTTPError {
	message := "Server is shutting down"
	if !errors.Is(err, queue.ErrClosed) {
		message = "Request cancelled while waiting for a worker"
	}
	return &HTTPError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    message,
		ErrorLog:   err,
	}
}
