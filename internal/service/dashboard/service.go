package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/auditlog"
	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/utils"
)

const (
	DefaultPeriodDays = 7
	MaxPeriodDays     = 90

	DefaultActivityLimit = 10
	MaxActivityLimit     = 50

	DefaultLogLimit = 25
	MaxLogLimit     = 100

	// ActiveWindow is how recent a session's last message must be for it to
	// count as an active conversation.
	ActiveWindow = 30 * time.Minute

	messagePreviewLength = 100
)

// LogReader pages through the webhook audit table.
type LogReader interface {
	ListWebhookLogs(ctx context.Context, limit int, cursor string) (auditlog.Page, error)
}

type Service struct {
	repo Repository
	logs LogReader
	now  func() time.Time
}

func New(db *database.Database, logs LogReader) *Service {
	return NewWithRepository(NewGormRepository(db), logs, time.Now)
}

func NewWithRepository(repo Repository, logs LogReader, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		logs: logs,
		now:  now,
	}
}

type Stats struct {
	TotalCustomers       int64 `json:"totalCustomers"`
	NewCustomersToday    int64 `json:"newCustomersToday"`
	ActiveConversations  int64 `json:"activeConversations"`
	ConversionRate       int   `json:"conversionRate"`
	NewCustomersInPeriod int64 `json:"newCustomersInPeriod"`
	PeriodDays           int   `json:"periodDays"`
}

func (s *Service) Stats(ctx context.Context, days int) (Stats, error) {
	if days == 0 {
		days = DefaultPeriodDays
	}
	if days < 1 || days > MaxPeriodDays {
		return Stats{}, newError(ErrorCodeValidation, "days must be between 1 and 90", nil)
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	periodStart := now.Add(-time.Duration(days) * 24 * time.Hour)

	var stats Stats
	var leads, converted int64
	counts := []struct {
		dst *int64
		q   CustomerQuery
	}{
		{&stats.TotalCustomers, CustomerQuery{}},
		{&stats.NewCustomersToday, CustomerQuery{Since: midnight}},
		{&leads, CustomerQuery{Status: model.CustomerStatusLead}},
		{&converted, CustomerQuery{Status: model.CustomerStatusCustomer}},
		{&stats.NewCustomersInPeriod, CustomerQuery{Since: periodStart, Until: now}},
	}
	for _, c := range counts {
		n, err := s.repo.CountCustomers(ctx, c.q)
		if err != nil {
			return Stats{}, newError(ErrorCodeInternal, "failed to count customers", err)
		}
		*c.dst = n
	}

	active, err := s.repo.CountActiveSessions(ctx, now.Add(-ActiveWindow))
	if err != nil {
		return Stats{}, newError(ErrorCodeInternal, "failed to count active sessions", err)
	}
	stats.ActiveConversations = active
	stats.ConversionRate = conversionRate(leads, converted)
	stats.PeriodDays = days
	return stats, nil
}

func conversionRate(leads, converted int64) int {
	prospects := leads + converted
	if prospects == 0 {
		return 0
	}
	return int(math.Round(float64(converted) / float64(prospects) * 100))
}

type Activity struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Metadata    map[string]string `json:"metadata"`
}

// RecentActivity merges the newest conversations and customers, half of the
// limit each (rounded up), newest first.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit < 0 {
		return nil, newError(ErrorCodeValidation, "limit must not be negative", nil)
	}
	if limit == 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	half := (limit + 1) / 2

	conversations, err := s.repo.LatestConversations(ctx, half)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to load conversations", err)
	}
	customers, err := s.repo.LatestCustomers(ctx, half)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to load customers", err)
	}

	activities := make([]Activity, 0, len(conversations)+len(customers))
	for _, c := range conversations {
		description := "Conversation with an anonymous visitor"
		if c.Customer != nil {
			description = fmt.Sprintf("Conversation with %s (%s)", c.Customer.Name, c.Customer.Email)
		}
		activities = append(activities, Activity{
			ID:          "conv-" + c.ID,
			Type:        "conversation",
			Title:       "New conversation",
			Description: description,
			Timestamp:   c.CreatedAt,
			Metadata: map[string]string{
				"intent":      c.Intent,
				"platform":    c.Platform,
				"userMessage": utils.Truncate(c.UserMessage, messagePreviewLength),
			},
		})
	}
	for _, c := range customers {
		activities = append(activities, Activity{
			ID:          "customer-" + c.ID,
			Type:        "customer",
			Title:       "New customer",
			Description: fmt.Sprintf("%s registered as %s from %s", c.Name, strings.ToLower(string(c.Status)), c.Source),
			Timestamp:   c.CreatedAt,
			Metadata: map[string]string{
				"status": string(c.Status),
				"source": c.Source,
				"email":  c.Email,
			},
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

// WebhookLogs returns one page of the audit table. Without an audit store the
// page is empty.
func (s *Service) WebhookLogs(ctx context.Context, limit int, cursor string) (auditlog.Page, error) {
	if limit < 0 {
		return auditlog.Page{}, newError(ErrorCodeValidation, "limit must not be negative", nil)
	}
	if limit == 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	if s.logs == nil {
		return auditlog.Page{}, nil
	}

	page, err := s.logs.ListWebhookLogs(ctx, limit, cursor)
	if err != nil {
		return auditlog.Page{}, newError(ErrorCodeInternal, "failed to load webhook logs", err)
	}
	return page, nil
}
