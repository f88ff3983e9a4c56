package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/makebyjordan/chatbot-crm/internal/env"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DynamoDBClient struct {
	svc *dynamodb.Client
}

func NewDynamoDBClient() (*DynamoDBClient, error) {
	region := env.Get(env.AWSRegion)
	credOne := env.Get(env.AWSID)
	credTwo := env.Get(env.AWSSecret)
	credThree := env.Get(env.AWSToken)
	endpoint := env.Get(env.DynamoDBEndpoint)

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if credOne != "" && credTwo != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(credOne, credTwo, credThree)),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	db := dynamodb.NewFromConfig(cfg, clientOpts...)
	return &DynamoDBClient{
		svc: db,
	}, nil
}

// OpenPostgres opens the relational store. Single statements are not wrapped
// in implicit transactions and driver errors are translated to gorm sentinels
// (gorm.ErrDuplicatedKey on unique violations).
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func GormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Database bundles the relational store (sessions, conversations, customers,
// sheet syncs) and the optional DynamoDB client used for the audit log.
type Database struct {
	SQL    *gorm.DB
	Client *DynamoDBClient
}

func NewDatabase() (*Database, error) {
	sqlDB, err := OpenPostgres(env.MustGet(env.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	db := &Database{SQL: sqlDB}

	if strings.TrimSpace(env.Get(env.AWSRegion)) != "" {
		dbClient, err := NewDynamoDBClient()
		if err != nil {
			return nil, fmt.Errorf("init dynamodb client: %w", err)
		}
		db.Client = dbClient
	}

	return db, nil
}

func (d *Database) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	sqlDB, err := d.SQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
