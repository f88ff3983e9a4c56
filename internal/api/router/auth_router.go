package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	authsvc "github.com/makebyjordan/chatbot-crm/internal/service/auth"
)

func AuthRoutes(prefix string, service *authsvc.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(service)
		mux.HandleFunc(prefix+"/auth/login", s.MakeHTTPHandleFunc(authEndpoints.Login))
		mux.HandleFunc(prefix+"/auth/refresh", s.MakeHTTPHandleFunc(authEndpoints.Refresh))
	}
}
