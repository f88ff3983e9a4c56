package endpoints

import (
	"net/http"
	"testing"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/middleware"
	"github.com/makebyjordan/chatbot-crm/internal/dto"
	internaljwt "github.com/makebyjordan/chatbot-crm/internal/jwt"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
)

const clientPrefix = "/api/client/v1"

func adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	internaljwt.Configure(internaljwt.RoleAdmin, "endpoints-test-secret", nil)
	token, err := internaljwt.CreateToken(internaljwt.User{Id: "admin", Email: "admin@example.com"}, internaljwt.RoleAdmin, time.Now().Add(time.Hour).Unix())
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func setupCustomerHandler(t *testing.T) (http.Handler, *customerStore) {
	t.Helper()
	store := newCustomerStore()
	service := customer.NewWithRepository(store, clock)

	routes := func(mux *http.ServeMux, s *api.APIServer) {
		endpoints := NewCustomerEndpoints(service, clientPrefix)
		mux.HandleFunc(clientPrefix+"/customers", s.MakeHTTPHandleFunc(endpoints.Customers, middleware.ValidateAdminJWT))
		mux.HandleFunc(clientPrefix+"/customers/", s.MakeHTTPHandleFunc(endpoints.Customer, middleware.ValidateAdminJWT))
	}
	return newTestServer(t, routes), store
}

func TestCustomerRoutesRequireAdmin(t *testing.T) {
	handler, _ := setupCustomerHandler(t)

	rec := doJSON(t, handler, http.MethodGet, clientPrefix+"/customers", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCustomerCRUDEndpoints(t *testing.T) {
	handler, store := setupCustomerHandler(t)
	headers := adminHeaders(t)

	rec := doJSON(t, handler, http.MethodPost, clientPrefix+"/customers", dto.CreateCustomerRequest{
		Name:  "María López",
		Email: "maria@example.com",
		Phone: "+34611111111",
	}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created dto.CustomerEnvelope
	decodeBody(t, rec, &created)
	if created.Customer.Status != string(model.CustomerStatusLead) || created.Customer.Source != model.SourceManual {
		t.Fatalf("unexpected defaults %+v", created.Customer)
	}
	id := created.Customer.ID

	rec = doJSON(t, handler, http.MethodPost, clientPrefix+"/customers", dto.CreateCustomerRequest{
		Name:  "Otra María",
		Email: "MARIA@example.com",
	}, headers)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, clientPrefix+"/customers?search=MARIA%40example&limit=5", nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var list dto.CustomerListResponse
	decodeBody(t, rec, &list)
	if len(list.Customers) != 1 || list.Pagination.Total != 1 || list.Pagination.Limit != 5 || list.Pagination.Page != 1 {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = doJSON(t, handler, http.MethodGet, clientPrefix+"/customers/"+id, nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var detail dto.CustomerDetailEnvelope
	decodeBody(t, rec, &detail)
	if detail.Customer.Email != "maria@example.com" || detail.Customer.Conversations == nil {
		t.Fatalf("unexpected detail %+v", detail.Customer)
	}

	status := "CUSTOMER"
	rec = doJSON(t, handler, http.MethodPut, clientPrefix+"/customers/"+id, dto.UpdateCustomerRequest{Status: &status}, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stored, _ := store.byEmail("maria@example.com"); stored.Status != model.CustomerStatusCustomer {
		t.Fatalf("status not updated: %s", stored.Status)
	}

	rec = doJSON(t, handler, http.MethodDelete, clientPrefix+"/customers/"+id, nil, headers)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var deleted dto.DeletedCustomerResponse
	decodeBody(t, rec, &deleted)
	if deleted.DeletedCustomer.ID != id {
		t.Fatalf("unexpected deleted customer %+v", deleted)
	}

	rec = doJSON(t, handler, http.MethodGet, clientPrefix+"/customers/"+id, nil, headers)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCustomerListValidation(t *testing.T) {
	handler, _ := setupCustomerHandler(t)
	headers := adminHeaders(t)

	for _, query := range []string{"?limit=51", "?page=-1", "?status=VIP", "?source=fax", "?limit=x"} {
		rec := doJSON(t, handler, http.MethodGet, clientPrefix+"/customers"+query, nil, headers)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, rec.Code)
		}
	}
}

func TestCustomerItemPathMustHaveOneSegment(t *testing.T) {
	handler, _ := setupCustomerHandler(t)

	rec := doJSON(t, handler, http.MethodGet, clientPrefix+"/customers/a/b", nil, adminHeaders(t))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
