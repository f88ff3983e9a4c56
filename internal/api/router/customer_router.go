package router

import (
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/endpoints"
	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
)

func CustomerRoutes(prefix string, service *customer.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		customerEndpoints := endpoints.NewCustomerEndpoints(service, prefix)
		mux.HandleFunc(prefix+"/customers", s.MakeHTTPHandleFunc(customerEndpoints.Customers, middleware.ValidateAdminJWT))
		mux.HandleFunc(prefix+"/customers/", s.MakeHTTPHandleFunc(customerEndpoints.Customer, middleware.ValidateAdminJWT))
	}
}
