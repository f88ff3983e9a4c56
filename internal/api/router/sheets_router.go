package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
)

func SheetsRoutes(prefix string, service *sheets.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		sheetsEndpoints := endpoints.NewSheetsEndpoints(service)
		mux.HandleFunc(prefix+"/sheets/data", s.MakeHTTPHandleFunc(sheetsEndpoints.Data, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/sheets/sync-status", s.MakeHTTPHandleFunc(sheetsEndpoints.SyncStatus, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/sheets/trigger-sync", s.MakeHTTPHandleFunc(sheetsEndpoints.TriggerSync, middleware.ValidateAdminJWT))
	}
}
