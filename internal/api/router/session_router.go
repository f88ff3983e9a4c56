package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/ratelimit"
	"github.com/makebyjordan/chatbot-crm/internal/service/chat"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"
)

// SessionRoutes registers the widget API. limiter may be nil.
func SessionRoutes(prefix string, sessions *session.Service, chatService *chat.Service, limiter ratelimit.Limiter) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		sessionEndpoints := endpoints.NewSessionEndpoints(sessions, chatService)
		limit := middleware.RateLimit(limiter, s.Logger())
		mux.HandleFunc(prefix+"/session/new", s.MakeHTTPHandleFunc(sessionEndpoints.New, limit))
		mux.HandleFunc(prefix+"/session/send", s.MakeHTTPHandleFunc(sessionEndpoints.Send, limit))
		mux.HandleFunc(prefix+"/session/history", s.MakeHTTPHandleFunc(sessionEndpoints.History))
	}
}
