package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
)

type sheetsUpdatedPayload struct {
	SheetID   string     `json:"sheetId"`
	Customers []sheetRow `json:"customers"`
	Timestamp string     `json:"timestamp"`
}

type sheetRow struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	RowNumber *int   `json:"rowNumber"`
}

type SheetsResult struct {
	SheetID   string `json:"sheetId"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Failed    int    `json:"failed"`
}

// SheetsUpdated imports the rows of one spreadsheet. Each row is upserted by
// email as a sheets-sourced LEAD; row failures are recorded on the sync table
// and do not fail the callback.
func (s *Service) SheetsUpdated(ctx context.Context, req Request) (result SheetsResult, err error) {
	defer func() {
		if err != nil {
			s.finish(ctx, SheetsUpdatedEndpoint, req, nil, err)
			return
		}
		s.finish(ctx, SheetsUpdatedEndpoint, req, result, nil)
	}()

	if err := s.verify(req.Signature); err != nil {
		return SheetsResult{}, err
	}

	var payload sheetsUpdatedPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return SheetsResult{}, newError(ErrorCodeValidation, "invalid webhook payload", err)
	}
	payload.SheetID = strings.TrimSpace(payload.SheetID)
	if payload.SheetID == "" {
		return SheetsResult{}, newError(ErrorCodeValidation, "sheetId is required", nil)
	}
	if payload.Customers == nil {
		return SheetsResult{}, newError(ErrorCodeValidation, "customers is required", nil)
	}
	if payload.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
			return SheetsResult{}, newError(ErrorCodeValidation, "timestamp must be RFC 3339", err)
		}
	}

	result.SheetID = payload.SheetID
	for _, row := range payload.Customers {
		result.Processed++

		var rowErr error
		var customerID string
		if !customer.ValidEmail(row.Email) {
			rowErr = errors.New("invalid email")
		} else {
			c, created, err := s.customers.Upsert(ctx, customer.UpsertInput{
				Name:    row.Name,
				Email:   row.Email,
				Phone:   row.Phone,
				Company: row.Company,
				Status:  model.CustomerStatusLead,
				Source:  model.SourceSheets,
			})
			switch {
			case err != nil:
				rowErr = err
			case created:
				result.Created++
				customerID = c.ID
			default:
				result.Updated++
				customerID = c.ID
			}
		}
		if rowErr != nil {
			result.Failed++
			s.logger.Warn("sheet row import failed", "sheet", payload.SheetID, "row", row.RowNumber, "error", rowErr)
		}

		if s.sheetRows == nil {
			continue
		}
		if err := s.sheetRows.RecordRow(ctx, sheets.RowInput{
			SheetID:    payload.SheetID,
			RowNumber:  row.RowNumber,
			CustomerID: customerID,
			Err:        rowErr,
		}); err != nil {
			return SheetsResult{}, newError(ErrorCodeInternal, "failed to record sheet row", err)
		}
	}

	return result, nil
}

type customerRegisteredPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

type CustomerResult struct {
	CustomerID string `json:"customerId"`
	Created    bool   `json:"created"`
}

// CustomerRegistered creates the customer, or merges into the one with the
// same email.
func (s *Service) CustomerRegistered(ctx context.Context, req Request) (result CustomerResult, err error) {
	defer func() {
		if err != nil {
			s.finish(ctx, CustomerRegisteredEndpoint, req, nil, err)
			return
		}
		s.finish(ctx, CustomerRegisteredEndpoint, req, result, nil)
	}()

	if err := s.verify(req.Signature); err != nil {
		return CustomerResult{}, err
	}

	var payload customerRegisteredPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		return CustomerResult{}, newError(ErrorCodeValidation, "invalid webhook payload", err)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return CustomerResult{}, newError(ErrorCodeValidation, "name is required", nil)
	}
	if !customer.ValidEmail(payload.Email) {
		return CustomerResult{}, newError(ErrorCodeValidation, "email is invalid", nil)
	}
	source := strings.TrimSpace(payload.Source)
	if source == "" {
		source = model.SourceSheets
	}

	c, created, err := s.customers.Upsert(ctx, customer.UpsertInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Company: payload.Company,
		Notes:   payload.Notes,
		Status:  model.CustomerStatusLead,
		Source:  source,
	})
	if err != nil {
		var custErr *customer.Error
		if errors.As(err, &custErr) && custErr.Code == customer.ErrorCodeValidation {
			return CustomerResult{}, newError(ErrorCodeValidation, custErr.Message, err)
		}
		return CustomerResult{}, newError(ErrorCodeInternal, "failed to save customer", err)
	}
	return CustomerResult{CustomerID: c.ID, Created: created}, nil
}
