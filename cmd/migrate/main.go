package main

import (
	"log/slog"
	"os"

	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/env"
	"github.com/makebyjordan/chatbot-crm/internal/model"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "migrate")
	slog.SetDefault(logger)

	if err := env.Require(env.DatabaseURL); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	sqlDB, err := database.OpenPostgres(env.Get(env.DatabaseURL))
	if err != nil {
		logger.Error("db init failed", "error", err)
		os.Exit(1)
	}

	if err := sqlDB.AutoMigrate(model.Migrated()...); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	logger.Info("schema migrated", "tables", []string{model.CustomersTable, model.ChatSessionsTable, model.ConversationsTable, model.SheetSyncsTable})
}
