package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/utils"

	"github.com/google/uuid"
)

// UpsertInput describes customer data asserted by the automation service.
// Status, Source and Notes only apply when a new customer is created.
type UpsertInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Notes   string
	Status  model.CustomerStatus
	Source  string
	// PromoteLead moves an existing LEAD to CONTACT. It never demotes.
	PromoteLead bool
}

// Upsert merges in into the customer identified by email, creating it when
// absent and a name is known. Replaying the same input is a no-op.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (model.Customer, bool, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return model.Customer{}, false, err
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		merged, err := s.merge(ctx, existing, in)
		return merged, false, err
	case !errors.Is(err, ErrNotFound):
		return model.Customer{}, false, newError(ErrorCodeInternal, "failed to load customer", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Customer{}, false, newError(ErrorCodeValidation, "name is required to create a customer", nil)
	}
	status := in.Status
	if !status.Valid() {
		status = model.CustomerStatusLead
	}
	source := in.Source
	if source == "" {
		source = model.SourceManual
	}

	now := s.now().UTC()
	customer := model.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     utils.StringPtr(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Status:    status,
		Source:    source,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		if !errors.Is(err, ErrConflict) {
			return model.Customer{}, false, newError(ErrorCodeInternal, "failed to create customer", err)
		}
		// Another writer created the same email first.
		winner, findErr := s.repo.FindByEmail(ctx, email)
		if findErr != nil {
			return model.Customer{}, false, newError(ErrorCodeConflict, "a customer with this email or phone already exists", err)
		}
		merged, err := s.merge(ctx, winner, in)
		return merged, false, err
	}
	return customer, true, nil
}

func (s *Service) merge(ctx context.Context, customer model.Customer, in UpsertInput) (model.Customer, error) {
	changed := false
	if name := strings.TrimSpace(in.Name); name != "" && name != customer.Name {
		customer.Name = name
		changed = true
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" && phone != customer.PhoneValue() {
		customer.Phone = &phone
		changed = true
	}
	if company := strings.TrimSpace(in.Company); company != "" && company != customer.Company {
		customer.Company = company
		changed = true
	}
	if in.PromoteLead && customer.Status == model.CustomerStatusLead {
		customer.Status = model.CustomerStatusContact
		changed = true
	}
	if !changed {
		return customer, nil
	}

	customer.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, &customer); err != nil {
		return model.Customer{}, err
	}
	return customer, nil
}
