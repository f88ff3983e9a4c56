package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/router"
	"github.com/makebyjordan/chatbot-crm/internal/auditlog"
	"github.com/makebyjordan/chatbot-crm/internal/automation"
	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/env"
	"github.com/makebyjordan/chatbot-crm/internal/locale"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/queue"
	"github.com/makebyjordan/chatbot-crm/internal/ratelimit"
	"github.com/makebyjordan/chatbot-crm/internal/service/chat"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/session"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
	"github.com/makebyjordan/chatbot-crm/internal/service/webhook"
)

const prefix = "/api/public/v1"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "public-server")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("public-server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if err := env.Require(env.DatabaseURL, env.AutomationBaseURL); err != nil {
		return err
	}

	db, err := database.NewDatabase()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close()

	var audit *auditlog.Recorder
	if db.Client != nil {
		store := auditlog.NewDynamoStore(db.Client, env.GetOrDefault(env.WebhookLogTable, model.DefaultWebhookLogTable))
		audit = auditlog.NewRecorder(store, logger)
	} else {
		logger.Warn("AWS_REGION not set, webhook audit entries go to the local log only")
		audit = auditlog.NewRecorder(nil, logger)
	}

	secret := env.Get(env.WebhookSecret)
	if secret == "" {
		logger.Warn("WEBHOOK_SECRET not set, webhook signatures are not checked")
	}

	relay := automation.New(
		env.Get(env.AutomationBaseURL),
		secret,
		env.GetDuration(env.AutomationTimeout, automation.DefaultTimeout),
		audit,
	)

	sessions := session.New(db)
	customers := customer.New(db)
	chatService := chat.New(db, chat.Config{
		Sessions:        sessions,
		Relay:           relay,
		Catalog:         locale.MustCatalog(env.GetOrDefault(env.FallbackLanguage, locale.DefaultLanguage)),
		DefaultLanguage: env.GetOrDefault(env.FallbackLanguage, locale.DefaultLanguage),
		Logger:          logger.With("component", "chat"),
	})
	sheetService := sheets.New(db, relay, logger.With("component", "sheets"))
	webhookService := webhook.New(webhook.Dependencies{
		Secret:        secret,
		Sessions:      sessions,
		Customers:     customers,
		Conversations: chat.NewGormRepository(db),
		SheetRows:     sheetService,
		Audit:         audit,
		Logger:        logger.With("component", "webhook"),
	})

	var limiter ratelimit.Limiter
	redisClient, err := database.NewRedisClient(context.Background())
	if err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = ratelimit.NewFixedWindow(redisClient, "chatbot-crm:ratelimit", env.GetInt(env.RateLimitPerMinute, 30), time.Minute)
	} else {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	reg := prometheus.DefaultRegisterer
	automation.MustRegisterMetrics(reg)
	chat.MustRegisterMetrics(reg)
	webhook.MustRegisterMetrics(reg)

	queueManager := queue.NewRequestQueueManager(env.GetInt(env.QueueSize, 100), env.GetInt(env.QueueWorkers, 10))

	server := api.NewAPIServer(
		env.GetOrDefault(env.PublicAddr, ":82"),
		queueManager,
		db,
		api.Options{
			AllowedOrigins: env.GetList(env.CORSAllowedOrigins, nil),
			Registerer:     reg,
			Logger:         logger,
		},
		router.UtilsRoutes(prefix, "public-server"),
		router.SessionRoutes(prefix, sessions, chatService, limiter),
		router.WebhookRoutes(prefix, webhookService),
	)

	return server.Run()
}
