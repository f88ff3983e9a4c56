package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	"github.com/makebyjordan/chatbot-crm/internal/service/webhook"
)

func WebhookRoutes(prefix string, service *webhook.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		webhookEndpoints := endpoints.NewWebhookEndpoints(service, s.Logger())
		mux.HandleFunc(prefix+webhook.ChatResponseEndpoint, s.MakeHTTPHandleFunc(webhookEndpoints.ChatResponse))
		mux.HandleFunc(prefix+webhook.SheetsUpdatedEndpoint, s.MakeHTTPHandleFunc(webhookEndpoints.SheetsUpdated))
		mux.HandleFunc(prefix+webhook.CustomerRegisteredEndpoint, s.MakeHTTPHandleFunc(webhookEndpoints.CustomerRegistered))
	}
}
