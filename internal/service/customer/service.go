package customer

import (
	"context"
	"errors"
	"math"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/utils"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50

	RecentConversationLimit = 10

	minNameLength = 2
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewGormRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		now:  now,
	}
}

type ListParams struct {
	Search string
	Status string
	Source string
	Page   int
	Limit  int
}

type Summary struct {
	model.Customer
	Count Counts `json:"_count"`
}

type ListResult struct {
	Customers  []Summary
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	HasMore    bool
}

func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = DefaultPageSize
	}
	if params.Page < 1 {
		return ListResult{}, newError(ErrorCodeValidation, "page must be at least 1", nil)
	}
	if params.Limit < 1 || params.Limit > MaxPageSize {
		return ListResult{}, newError(ErrorCodeValidation, "limit must be between 1 and 50", nil)
	}

	filter := Filter{
		Search: strings.TrimSpace(params.Search),
		Offset: (params.Page - 1) * params.Limit,
		Limit:  params.Limit,
	}
	if params.Status != "" {
		status := model.CustomerStatus(strings.ToUpper(params.Status))
		if !status.Valid() {
			return ListResult{}, newError(ErrorCodeValidation, "invalid status", nil)
		}
		filter.Status = status
	}
	if params.Source != "" {
		if !model.ValidSource(params.Source) {
			return ListResult{}, newError(ErrorCodeValidation, "invalid source", nil)
		}
		filter.Source = params.Source
	}

	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListResult{}, newError(ErrorCodeInternal, "failed to list customers", err)
	}

	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.CountRelations(ctx, ids)
	if err != nil {
		return ListResult{}, newError(ErrorCodeInternal, "failed to count customer activity", err)
	}

	summaries := make([]Summary, 0, len(customers))
	for _, c := range customers {
		summaries = append(summaries, Summary{Customer: c, Count: counts[c.ID]})
	}

	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	return ListResult{
		Customers:  summaries,
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    params.Page < totalPages,
	}, nil
}

type CreateInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Status  string
	Source  string
	Notes   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Summary, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < minNameLength {
		return Summary{}, newError(ErrorCodeValidation, "name must be at least 2 characters", nil)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Summary{}, err
	}

	status := model.CustomerStatusLead
	if in.Status != "" {
		status = model.CustomerStatus(strings.ToUpper(in.Status))
		if !status.Valid() {
			return Summary{}, newError(ErrorCodeValidation, "invalid status", nil)
		}
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = model.SourceManual
	}

	if err := s.ensureAvailable(ctx, "", email, strings.TrimSpace(in.Phone)); err != nil {
		return Summary{}, err
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
		if errors.Is(err, ErrConflict) {
			return Summary{}, newError(ErrorCodeConflict, "a customer with this email or phone already exists", err)
		}
		return Summary{}, newError(ErrorCodeInternal, "failed to create customer", err)
	}

	return Summary{Customer: customer}, nil
}

type Detail struct {
	model.Customer
	Conversations []model.Conversation `json:"conversations"`
	SheetSyncs    []model.SheetSync    `json:"sheetSyncs"`
	Count         Counts               `json:"_count"`
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	conversations, err := s.repo.RecentConversations(ctx, customer.ID, RecentConversationLimit)
	if err != nil {
		return Detail{}, newError(ErrorCodeInternal, "failed to load conversations", err)
	}
	syncs, err := s.repo.SheetSyncs(ctx, customer.ID)
	if err != nil {
		return Detail{}, newError(ErrorCodeInternal, "failed to load sheet syncs", err)
	}
	counts, err := s.repo.CountRelations(ctx, []string{customer.ID})
	if err != nil {
		return Detail{}, newError(ErrorCodeInternal, "failed to count customer activity", err)
	}

	if conversations == nil {
		conversations = []model.Conversation{}
	}
	if syncs == nil {
		syncs = []model.SheetSync{}
	}
	return Detail{
		Customer:      customer,
		Conversations: conversations,
		SheetSyncs:    syncs,
		Count:         counts[customer.ID],
	}, nil
}

// UpdateInput is a partial update; nil fields are left untouched. An empty
// Phone clears the phone number.
type UpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Status  *string
	Notes   *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Summary, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return Summary{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) < minNameLength {
			return Summary{}, newError(ErrorCodeValidation, "name must be at least 2 characters", nil)
		}
		customer.Name = name
	}

	newEmail := ""
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return Summary{}, err
		}
		if email != customer.Email {
			newEmail = email
		}
		customer.Email = email
	}

	newPhone := ""
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != "" && phone != customer.PhoneValue() {
			newPhone = phone
		}
		customer.Phone = utils.StringPtr(phone)
	}

	if in.Company != nil {
		customer.Company = strings.TrimSpace(*in.Company)
	}
	if in.Status != nil {
		status := model.CustomerStatus(strings.ToUpper(strings.TrimSpace(*in.Status)))
		if !status.Valid() {
			return Summary{}, newError(ErrorCodeValidation, "invalid status", nil)
		}
		customer.Status = status
	}
	if in.Notes != nil {
		customer.Notes = strings.TrimSpace(*in.Notes)
	}

	if err := s.ensureAvailable(ctx, customer.ID, newEmail, newPhone); err != nil {
		return Summary{}, err
	}

	customer.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, &customer); err != nil {
		return Summary{}, err
	}

	counts, err := s.repo.CountRelations(ctx, []string{customer.ID})
	if err != nil {
		return Summary{}, newError(ErrorCodeInternal, "failed to count customer activity", err)
	}
	return Summary{Customer: customer, Count: counts[customer.ID]}, nil
}

type Deleted struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	ConversationsCount int64  `json:"conversationsCount"`
	SheetSyncsCount    int64  `json:"sheetSyncsCount"`
}

// Delete removes the customer. Conversations, sessions and sheet rows keep
// existing with their customer reference cleared.
func (s *Service) Delete(ctx context.Context, id string) (Deleted, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return Deleted{}, err
	}
	counts, err := s.repo.CountRelations(ctx, []string{customer.ID})
	if err != nil {
		return Deleted{}, newError(ErrorCodeInternal, "failed to count customer activity", err)
	}

	if err := s.repo.Delete(ctx, customer.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Deleted{}, newError(ErrorCodeNotFound, "customer not found", err)
		}
		return Deleted{}, newError(ErrorCodeInternal, "failed to delete customer", err)
	}

	c := counts[customer.ID]
	return Deleted{
		ID:                 customer.ID,
		Name:               customer.Name,
		Email:              customer.Email,
		ConversationsCount: c.Conversations,
		SheetSyncsCount:    c.SheetSyncs,
	}, nil
}

func (s *Service) find(ctx context.Context, id string) (model.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Customer{}, newError(ErrorCodeValidation, "customer id is required", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.Customer{}, newError(ErrorCodeNotFound, "customer not found", ErrNotFound)
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Customer{}, newError(ErrorCodeNotFound, "customer not found", err)
		}
		return model.Customer{}, newError(ErrorCodeInternal, "failed to load customer", err)
	}
	return customer, nil
}

func (s *Service) save(ctx context.Context, customer *model.Customer) error {
	if err := s.repo.Update(ctx, customer); err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			return newError(ErrorCodeConflict, "a customer with this email or phone already exists", err)
		case errors.Is(err, ErrNotFound):
			return newError(ErrorCodeNotFound, "customer not found", err)
		}
		return newError(ErrorCodeInternal, "failed to update customer", err)
	}
	return nil
}

// ensureAvailable reports a conflict when email or phone already belongs to a
// customer other than selfID. Empty values are not checked.
func (s *Service) ensureAvailable(ctx context.Context, selfID, email, phone string) error {
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return newError(ErrorCodeConflict, "a customer with this email already exists", ErrConflict)
		case err != nil && !errors.Is(err, ErrNotFound):
			return newError(ErrorCodeInternal, "failed to check email", err)
		}
	}
	if phone != "" {
		existing, err := s.repo.FindByPhone(ctx, phone)
		switch {
		case err == nil && existing.ID != selfID:
			return newError(ErrorCodeConflict, "a customer with this phone already exists", ErrConflict)
		case err != nil && !errors.Is(err, ErrNotFound):
			return newError(ErrorCodeInternal, "failed to check phone", err)
		}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", newError(ErrorCodeValidation, "email is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(ErrorCodeValidation, "invalid email", err)
	}
	return email, nil
}

// ValidEmail reports whether raw is a bare address such as a@b.co.
func ValidEmail(raw string) bool {
	_, err := normalizeEmail(raw)
	return err == nil
}
