package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
)

type CustomerEndpoints interface {
	Customers(http.ResponseWriter, *http.Request) error
	Customer(http.ResponseWriter, *http.Request) error
}

type customerEndpoints struct {
	service    *customer.Service
	itemPrefix string
}

// NewCustomerEndpoints serves prefix+"/customers" and prefix+"/customers/{id}".
func NewCustomerEndpoints(service *customer.Service, prefix string) CustomerEndpoints {
	return &customerEndpoints{
		service:    service,
		itemPrefix: strings.TrimRight(prefix, "/") + "/customers/",
	}
}

func (h *customerEndpoints) Customers(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleList,
		http.MethodPost: h.handleCreate,
	})
}

func (h *customerEndpoints) Customer(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:    h.handleGet,
		http.MethodPut:    h.handleUpdate,
		http.MethodPatch:  h.handleUpdate,
		http.MethodDelete: h.handleDelete,
	})
}

func (h *customerEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	page, err := queryInt(r, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	query := r.URL.Query()

	result, err := h.service.List(r.Context(), customer.ListParams{
		Search: query.Get("search"),
		Status: query.Get("status"),
		Source: query.Get("source"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return h.serviceError(err)
	}

	customers := make([]dto.CustomerResponse, 0, len(result.Customers))
	for _, c := range result.Customers {
		customers = append(customers, toCustomerResponse(c.Customer, c.Count))
	}

	return WriteJSON(w, http.StatusOK, dto.CustomerListResponse{
		Success:   true,
		Customers: customers,
		Pagination: dto.Pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
			HasMore:    result.HasMore,
		},
	})
}

func (h *customerEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		return err
	}

	created, err := h.service.Create(r.Context(), customer.CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Status:  req.Status,
		Source:  req.Source,
		Notes:   req.Notes,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.CustomerEnvelope{
		Success:  true,
		Customer: toCustomerResponse(created.Customer, created.Count),
	})
}

func (h *customerEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	id, err := h.customerID(r)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		return h.serviceError(err)
	}

	conversations := make([]dto.ConversationResponse, 0, len(detail.Conversations))
	for _, c := range detail.Conversations {
		conversations = append(conversations, toConversationResponse(c))
	}
	syncs := make([]dto.SheetSyncResponse, 0, len(detail.SheetSyncs))
	for _, s := range detail.SheetSyncs {
		syncs = append(syncs, toSheetSyncResponse(s))
	}

	return WriteJSON(w, http.StatusOK, dto.CustomerDetailEnvelope{
		Success: true,
		Customer: dto.CustomerDetailResponse{
			CustomerResponse: toCustomerResponse(detail.Customer, detail.Count),
			Conversations:    conversations,
			SheetSyncs:       syncs,
		},
	})
}

func (h *customerEndpoints) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	id, err := h.customerID(r)
	if err != nil {
		return err
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		return err
	}

	updated, err := h.service.Update(r.Context(), id, customer.UpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Status:  req.Status,
		Notes:   req.Notes,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.CustomerEnvelope{
		Success:  true,
		Customer: toCustomerResponse(updated.Customer, updated.Count),
	})
}

func (h *customerEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	id, err := h.customerID(r)
	if err != nil {
		return err
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.DeletedCustomerResponse{
		Success: true,
		DeletedCustomer: dto.DeletedCustomer{
			ID:                 deleted.ID,
			Name:               deleted.Name,
			Email:              deleted.Email,
			ConversationsCount: deleted.ConversationsCount,
			SheetSyncsCount:    deleted.SheetSyncsCount,
		},
	})
}

func (h *customerEndpoints) customerID(r *http.Request) (string, error) {
	id, ok := pathID(r.URL.Path, h.itemPrefix)
	if !ok {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    "Customer not found",
			ErrorLog:   fmt.Errorf("invalid customer path: %s", r.URL.Path),
		}
	}
	return id, nil
}

func (h *customerEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *customer.Error
	if !errors.As(err, &svcErr) {
		return internalError(fmt.Errorf("customer service: %w", err))
	}
	return mapServiceError("customer service", string(svcErr.Code), svcErr.Message, svcErr.Err)
}

func toCustomerResponse(c model.Customer, counts customer.Counts) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Status:    string(c.Status),
		Source:    c.Source,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Count: dto.CustomerCounts{
			Conversations: counts.Conversations,
			SheetSyncs:    counts.SheetSyncs,
		},
	}
}

func toSheetSyncResponse(s model.SheetSync) dto.SheetSyncResponse {
	return dto.SheetSyncResponse{
		ID:           s.ID,
		SheetID:      s.SheetID,
		RowNumber:    s.RowNumber,
		SyncStatus:   string(s.SyncStatus),
		SyncError:    s.SyncError,
		LastSyncedAt: s.LastSyncedAt,
	}
}
