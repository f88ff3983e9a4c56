package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/makebyjordan/chatbot-crm/internal/api"
	"github.com/makebyjordan/chatbot-crm/internal/api/router"
	"github.com/makebyjordan/chatbot-crm/internal/auditlog"
	"github.com/makebyjordan/chatbot-crm/internal/automation"
	"github.com/makebyjordan/chatbot-crm/internal/database"
	"github.com/makebyjordan/chatbot-crm/internal/env"
	internaljwt "github.com/makebyjordan/chatbot-crm/internal/jwt"
	"github.com/makebyjordan/chatbot-crm/internal/model"
	"github.com/makebyjordan/chatbot-crm/internal/queue"
	authsvc "github.com/makebyjordan/chatbot-crm/internal/service/auth"
	"github.com/makebyjordan/chatbot-crm/internal/service/customer"
	"github.com/makebyjordan/chatbot-crm/internal/service/dashboard"
	"github.com/makebyjordan/chatbot-crm/internal/service/sheets"
)

const prefix = "/api/client/v1"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "client-server")
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("client-server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if err := env.Require(env.DatabaseURL, env.UserSecretKey, env.AdminEmail, env.AdminPasswordHash, env.RedisURL); err != nil {
		return err
	}

	db, err := database.NewDatabase()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(context.Background())
	if err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	defer redisClient.Close()
	internaljwt.Configure(internaljwt.RoleAdmin, env.Get(env.UserSecretKey), internaljwt.NewRedisTokenStore(redisClient))

	var (
		audit *auditlog.Recorder
		logs  dashboard.LogReader
	)
	if db.Client != nil {
		store := auditlog.NewDynamoStore(db.Client, env.GetOrDefault(env.WebhookLogTable, model.DefaultWebhookLogTable))
		audit = auditlog.NewRecorder(store, logger)
		logs = store
	} else {
		logger.Warn("AWS_REGION not set, webhook logs are unavailable on the dashboard")
		audit = auditlog.NewRecorder(nil, logger)
	}

	// The trigger-sync button works without the automation service; the
	// service reports a partial success with a warning instead.
	trigger := automation.New(
		env.Get(env.AutomationBaseURL),
		env.Get(env.WebhookSecret),
		env.GetDuration(env.AutomationTimeout, automation.DefaultTimeout),
		audit,
	)

	reg := prometheus.DefaultRegisterer
	automation.MustRegisterMetrics(reg)

	queueManager := queue.NewRequestQueueManager(env.GetInt(env.QueueSize, 100), env.GetInt(env.QueueWorkers, 10))

	server := api.NewAPIServer(
		env.GetOrDefault(env.ClientAddr, ":81"),
		queueManager,
		db,
		api.Options{
			AllowedOrigins: env.GetList(env.CORSAllowedOrigins, nil),
			Registerer:     reg,
			Logger:         logger,
		},
		router.UtilsRoutes(prefix, "client-server"),
		router.AuthRoutes(prefix, authsvc.New(env.Get(env.AdminEmail), env.Get(env.AdminPasswordHash))),
		router.CustomerRoutes(prefix, customer.New(db)),
		router.DashboardRoutes(prefix, dashboard.New(db, logs)),
		router.SheetsRoutes(prefix, sheets.New(db, trigger, logger.With("component", "sheets"))),
	)

	return server.Run()
}
