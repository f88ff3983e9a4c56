package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/makebyjordan/chatbot-crm/internal/dto"
	"github.com/makebyjordan/chatbot-crm/internal/service/dashboard"
)

type DashboardEndpoints interface {
	Stats(http.ResponseWriter, *http.Request) error
	RecentActivity(http.ResponseWriter, *http.Request) error
	WebhookLogs(http.ResponseWriter, *http.Request) error
}

type dashboardEndpoints struct {
	service *dashboard.Service
}

func NewDashboardEndpoints(service *dashboard.Service) DashboardEndpoints {
	return &dashboardEndpoints{service: service}
}

func (h *dashboardEndpoints) Stats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleStats,
	})
}

func (h *dashboardEndpoints) RecentActivity(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleRecentActivity,
	})
}

func (h *dashboardEndpoints) WebhookLogs(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleWebhookLogs,
	})
}

func (h *dashboardEndpoints) handleStats(w http.ResponseWriter, r *http.Request) error {
	days, err := queryInt(r, "days")
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(r.Context(), days)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.StatsResponse{
		Success:              true,
		TotalCustomers:       stats.TotalCustomers,
		NewCustomersToday:    stats.NewCustomersToday,
		ActiveConversations:  stats.ActiveConversations,
		ConversionRate:       stats.ConversionRate,
		NewCustomersInPeriod: stats.NewCustomersInPeriod,
		PeriodDays:           stats.PeriodDays,
	})
}

func (h *dashboardEndpoints) handleRecentActivity(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	activities, err := h.service.RecentActivity(r.Context(), limit)
	if err != nil {
		return h.serviceError(err)
	}

	items := make([]dto.ActivityItem, 0, len(activities))
	for _, a := range activities {
		items = append(items, dto.ActivityItem{
			ID:          a.ID,
			Type:        a.Type,
			Title:       a.Title,
			Description: a.Description,
			Timestamp:   a.Timestamp,
			Metadata:    a.Metadata,
		})
	}

	return WriteJSON(w, http.StatusOK, dto.ActivityResponse{
		Success:    true,
		Activities: items,
		Count:      len(items),
	})
}

func (h *dashboardEndpoints) handleWebhookLogs(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	page, err := h.service.WebhookLogs(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		return h.serviceError(err)
	}

	logs := make([]dto.WebhookLogResponse, 0, len(page.Items))
	for _, item := range page.Items {
		logs = append(logs, dto.WebhookLogResponse{
			ID:         item.LogID,
			Endpoint:   item.Endpoint,
			Method:     item.Method,
			Payload:    item.Payload,
			StatusCode: item.StatusCode,
			Response:   item.Response,
			Error:      item.Error,
			CreatedAt:  item.CreatedAt,
		})
	}

	return WriteJSON(w, http.StatusOK, dto.WebhookLogsResponse{
		Success:    true,
		Logs:       logs,
		NextCursor: page.Cursor,
	})
}

func (h *dashboardEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *dashboard.Error
	if !errors.As(err, &svcErr) {
		return internalError(fmt.Errorf("dashboard service: %w", err))
	}
	return mapServiceError("dashboard service", string(svcErr.Code), svcErr.Message, svcErr.Err)
}
