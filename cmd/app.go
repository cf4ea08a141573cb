package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/ronit-gandhi/meal-shame-tracker/config"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/services"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
	"github.com/ronit-gandhi/meal-shame-tracker/utils"
	"go.uber.org/zap"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	meals  *services.MealService
	hub    *services.RealtimeHub
	export *services.ExportService // nil without S3_BUCKET
	digest *services.DigestService // nil without SES_EMAIL
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	profiles, err := config.LoadProfiles(cfg.ProfilesFile)
	if err != nil {
		return nil, err
	}
	eng := engine.New(cfg.Timezone, profiles,
		engine.WithLeaderboardOrder(cfg.LeaderboardOrder),
		engine.WithMaxSeriesDays(cfg.MaxSeriesDays),
	)

	st, err := config.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, hub: services.NewRealtimeHub(log)}

	var awsCfg aws.Config
	if cfg.SNSTopicARN != "" || cfg.SESFrom != "" || cfg.ExportBucket != "" {
		if awsCfg, err = config.LoadAWS(ctx, cfg); err != nil {
			return nil, err
		}
	}

	var push services.Notifier
	if cfg.SNSTopicARN != "" {
		push = services.NewPushService(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN, cfg.PushMinTier)
	}
	a.meals = services.NewMealService(st, eng, log,
		services.WithEvents(services.NewAlertBus(a.hub, push, log)),
		services.WithMaxCalories(cfg.MaxCalories),
		services.WithHistoryDays(cfg.HistoryDays),
	)

	if cfg.ExportBucket != "" {
		uploader := utils.NewUploader(s3.NewFromConfig(awsCfg), cfg.ExportBucket)
		a.export = services.NewExportService(st, uploader, store.Codec{Loc: cfg.Timezone}, cfg.ExportPrefix, log)
	}
	if cfg.SESFrom != "" {
		mailer := utils.NewMailer(ses.NewFromConfig(awsCfg), cfg.SESFrom)
		a.digest = services.NewDigestService(a.meals, mailer, cfg.DigestRecipients, log)
	}
	return a, nil
}
