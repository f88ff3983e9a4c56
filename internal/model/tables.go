package model

const (
	ChatSessionsTable  = "chat_sessions"
	ConversationsTable = "conversations"
	CustomersTable     = "customers"
	SheetSyncsTable    = "sheet_syncs"
)

// DefaultWebhookLogTable is the DynamoDB table holding automation audit
// entries when WEBHOOK_LOG_TABLE is not set.
const DefaultWebhookLogTable = "WebhookLogs"

// Migrated lists the relational models owned by this service, in dependency
// order, for gorm's AutoMigrate.
func Migrated() []interface{} {
	return []interface{}{
		&Customer{},
		&ChatSession{},
		&Conversation{},
		&SheetSync{},
	}
}
