package auditlog

import (
	"context"
	"fmt"
	"sort"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoStore struct {
	client *database.DynamoDBClient
	table  string
}

func NewDynamoStore(client *database.DynamoDBClient, table string) *DynamoStore {
	if table == "" {
		table = model.DefaultWebhookLogTable
	}
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) PutWebhookLog(ctx context.Context, item model.WebhookLogItem) error {
	return s.client.PutItem(ctx, s.table, item)
}

// Page is one slice of the audit table. Cursor is empty on the last page.
type Page struct {
	Items  []model.WebhookLogItem
	Cursor string
}

// ListWebhookLogs scans the table one page at a time. The cursor is the logId
// of the last evaluated item; items inside a page are newest first.
func (s *DynamoStore) ListWebhookLogs(ctx context.Context, limit int, cursor string) (Page, error) {
	var startKey map[string]types.AttributeValue
	if cursor != "" {
		startKey = map[string]types.AttributeValue{"logId": database.AttrString(cursor)}
	}

	res, err := s.client.ScanPaginated(ctx, s.table, limit, startKey)
	if err != nil {
		return Page{}, err
	}

	var items []model.WebhookLogItem
	if err := database.UnmarshalItems(res.Items, &items); err != nil {
		return Page{}, fmt.Errorf("decode webhook logs: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})

	page := Page{Items: items}
	if res.HasMore {
		if v, ok := res.LastEvaluatedKey["logId"].(*types.AttributeValueMemberS); ok {
			page.Cursor = v.Value
		}
	}
	return page, nil
}
