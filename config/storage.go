package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LoadAWS returns the shared SDK config for the configured region.
func LoadAWS(ctx context.Context, cfg *Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}

// OpenDB connects gorm to postgres or sqlite and migrates the meal tables.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Storage {
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLite)
	default:
		return nil, fmt.Errorf("storage %q is not a SQL backend", cfg.Storage)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.NewGorm(db).Migrate(); err != nil {
		return nil, fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return db, nil
}

// OpenStore builds the configured backend wrapped in the row cache.
func OpenStore(ctx context.Context, cfg *Config, log *zap.Logger) (*store.Cached, error) {
	codec := store.Codec{Loc: cfg.Timezone}
	var backend store.Store

	switch cfg.Storage {
	case "postgres", "sqlite":
		db, err := OpenDB(cfg)
		if err != nil {
			return nil, err
		}
		backend = store.NewGorm(db)

	case "csv":
		backend = store.NewCSV(cfg.CSVPath, codec, log)

	case "dynamodb":
		awsCfg, err := LoadAWS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Dynamo.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Dynamo.Endpoint)
			}
		})
		backend = store.NewDynamo(client, cfg.Dynamo.Table, cfg.Timezone, log)

	case "sheets":
		api, err := store.NewSheetsAPI(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, err
		}
		backend = store.NewSheets(api, cfg.Sheets.SpreadsheetID, cfg.Sheets.Sheet, codec, log)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	log.Info("storage ready",
		zap.String("backend", cfg.Storage),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	return store.NewCached(backend, cfg.CacheTTL), nil
}
