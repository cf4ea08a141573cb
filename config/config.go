package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
)

// Config is everything the tracker reads from the environment.
type Config struct {
	Port     string
	LogLevel string

	Timezone *time.Location
	// MaxCalories caps a single submission.
	MaxCalories      int
	CacheTTL         time.Duration
	HistoryDays      int
	MaxSeriesDays    int
	LeaderboardOrder engine.LeaderboardOrder
	ProfilesFile     string

	Storage  string // postgres | sqlite | csv | dynamodb | sheets
	Postgres PostgresConfig
	SQLite   string
	CSVPath  string
	Dynamo   DynamoConfig
	Sheets   SheetsConfig

	AWSRegion   string
	SNSTopicARN string
	// PushMinTier is the lowest roast tier that triggers a push.
	PushMinTier engine.Tier

	SESFrom          string
	DigestRecipients []string
	DigestCron       string

	ExportBucket string
	ExportPrefix string
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		p.Host, p.User, p.Password, p.Name, p.Port)
}

type DynamoConfig struct {
	Table    string
	Endpoint string
}

type SheetsConfig struct {
	SpreadsheetID   string
	Sheet           string
	CredentialsFile string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests need not touch the environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:         get("PORT", "8080"),
		LogLevel:     get("LOG_LEVEL", "info"),
		ProfilesFile: get("PROFILES_FILE", ""),
		Storage:      strings.ToLower(get("STORAGE_BACKEND", "postgres")),
		Postgres: PostgresConfig{
			Host:     get("DB_HOST", "localhost"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "meals"),
			Port:     get("DB_PORT", "5432"),
		},
		SQLite:  get("SQLITE_PATH", "meals.db"),
		CSVPath: get("CSV_PATH", "meals.csv"),
		Dynamo: DynamoConfig{
			Table:    get("DYNAMO_TABLE", "MealShame"),
			Endpoint: get("DYNAMO_ENDPOINT", ""),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   get("SHEETS_SPREADSHEET_ID", ""),
			Sheet:           get("SHEETS_SHEET", "Sheet1"),
			CredentialsFile: get("SHEETS_CREDENTIALS_FILE", "creds.json"),
		},
		AWSRegion:    get("AWS_REGION", "us-east-1"),
		SNSTopicARN:  get("SNS_TOPIC_ARN", ""),
		SESFrom:      get("SES_EMAIL", ""),
		DigestCron:   get("DIGEST_CRON", "0 21 * * *"),
		ExportBucket: get("S3_BUCKET", ""),
		ExportPrefix: get("S3_PREFIX", "snapshots"),
	}

	loc, err := time.LoadLocation(get("APP_TIMEZONE", "America/New_York"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc

	if cfg.MaxCalories, err = atoi(get("MAX_CALORIES", "3000"), "MAX_CALORIES"); err != nil {
		return nil, err
	}
	if cfg.HistoryDays, err = atoi(get("HISTORY_DAYS", "7"), "HISTORY_DAYS"); err != nil {
		return nil, err
	}
	if cfg.MaxSeriesDays, err = atoi(get("MAX_SERIES_DAYS", "366"), "MAX_SERIES_DAYS"); err != nil {
		return nil, err
	}
	if cfg.MaxSeriesDays == 0 {
		return nil, fmt.Errorf("MAX_SERIES_DAYS: must be positive")
	}

	ttl, err := time.ParseDuration(get("CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if ttl > 60*time.Second {
		ttl = 60 * time.Second
	}
	cfg.CacheTTL = ttl

	switch strings.ToLower(get("LEADERBOARD_ORDER", "most")) {
	case "most":
		cfg.LeaderboardOrder = engine.MostCaloriesFirst
	case "fewest":
		cfg.LeaderboardOrder = engine.FewestCaloriesFirst
	default:
		return nil, fmt.Errorf("LEADERBOARD_ORDER must be 'most' or 'fewest'")
	}

	tier, ok := engine.ParseTier(strings.ToUpper(get("PUSH_MIN_TIER", "MODERATE")))
	if !ok {
		return nil, fmt.Errorf("PUSH_MIN_TIER must be one of NONE, MILD, MODERATE, SEVERE")
	}
	cfg.PushMinTier = tier

	if v := get("DIGEST_RECIPIENTS", ""); v != "" {
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.DigestRecipients = append(cfg.DigestRecipients, addr)
			}
		}
	}

	switch cfg.Storage {
	case "postgres", "sqlite", "csv", "dynamodb", "sheets":
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND %q is not supported", cfg.Storage)
	}
	if cfg.Storage == "sheets" && cfg.Sheets.SpreadsheetID == "" {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the sheets backend")
	}
	return cfg, nil
}

func atoi(v, key string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}
