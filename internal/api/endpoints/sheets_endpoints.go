package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
)

type SheetsEndpoints interface {
	Data(http.ResponseWriter, *http.Request) error
	SyncStatus(http.ResponseWriter, *http.Request) error
	TriggerSync(http.ResponseWriter, *http.Request) error
}

type sheetsEndpoints struct {
	service *sheets.Service
}

func NewSheetsEndpoints(service *sheets.Service) SheetsEndpoints {
	return &sheetsEndpoints{service: service}
}

func (h *sheetsEndpoints) Data(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleData,
	})
}

func (h *sheetsEndpoints) SyncStatus(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSyncStatus,
	})
}

func (h *sheetsEndpoints) TriggerSync(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleTriggerSync,
	})
}

func (h *sheetsEndpoints) handleData(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	rows, err := h.service.Data(r.Context(), limit)
	if err != nil {
		return h.serviceError(err)
	}

	data := make([]dto.SheetRowResponse, 0, len(rows))
	for _, row := range rows {
		item := dto.SheetRowResponse{
			SheetSyncResponse: toSheetSyncResponse(row),
			CustomerID:        row.CustomerID,
		}
		if row.Customer != nil {
			item.Customer = &dto.SheetCustomerSummary{
				ID:     row.Customer.ID,
				Name:   row.Customer.Name,
				Email:  row.Customer.Email,
				Status: string(row.Customer.Status),
			}
		}
		data = append(data, item)
	}

	return WriteJSON(w, http.StatusOK, dto.SheetDataResponse{
		Success: true,
		Data:    data,
		Count:   len(data),
	})
}

func (h *sheetsEndpoints) handleSyncStatus(w http.ResponseWriter, r *http.Request) error {
	status, err := h.service.SyncStatus(r.Context())
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.SyncStatusResponse{
		Success:       true,
		LastSync:      status.LastSync,
		TotalRecords:  status.TotalRecords,
		SyncedRecords: status.SyncedRecords,
		ErrorRecords:  status.ErrorRecords,
		IsRunning:     status.IsRunning,
	})
}

func (h *sheetsEndpoints) handleTriggerSync(w http.ResponseWriter, r *http.Request) error {
	var req dto.TriggerSyncRequest
	if err := decodeJSON(r, &req, true); err != nil {
		return err
	}

	result, err := h.service.TriggerSync(r.Context(), req.SheetID, req.Force)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.TriggerSyncResponse{
		Success:            true,
		Triggered:          result.Triggered,
		MarkedPending:      result.MarkedPending,
		AutomationResponse: result.AutomationResponse,
		Warning:            result.Warning,
		Error:              result.AutomationError,
	})
}

func (h *sheetsEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *sheets.Error
	if !errors.As(err, &svcErr) {
		return internalError(fmt.Errorf("sheets service: %w", err))
	}
	return mapServiceError("sheets service", string(svcErr.Code), svcErr.Message, svcErr.Err)
}
