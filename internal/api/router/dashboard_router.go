package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/service/dashboard"
)

func DashboardRoutes(prefix string, service *dashboard.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		dashboardEndpoints := endpoints.NewDashboardEndpoints(service)
		mux.HandleFunc(prefix+"/dashboard/stats", s.MakeHTTPHandleFunc(dashboardEndpoints.Stats, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/dashboard/recent-activity", s.MakeHTTPHandleFunc(dashboardEndpoints.RecentActivity, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/dashboard/webhook-logs", s.MakeHTTPHandleFunc(dashboardEndpoints.WebhookLogs, middleware.ValidateAdminJWT))
	}
}
