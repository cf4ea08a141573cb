// services/meal_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
	"go.uber.org/zap"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidMeal        = errors.New("invalid meal")
	ErrInvalidRange       = errors.New("invalid day range")
)

const DefaultMaxCalories = 3000

const storageWarning = "storage unavailable, showing empty results"

// MealService owns the clock and the storage collaborator. Every read view
// is recomputed from a fresh snapshot.
type MealService struct {
	store       store.Store
	engine      *engine.Engine
	log         *zap.Logger
	now         func() time.Time
	events      EventSink
	maxCalories int
	historyDays int
}

type MealOption func(*MealService)

func WithClock(now func() time.Time) MealOption {
	return func(s *MealService) { s.now = now }
}

func WithEvents(sink EventSink) MealOption {
	return func(s *MealService) { s.events = sink }
}

func WithMaxCalories(n int) MealOption {
	return func(s *MealService) { s.maxCalories = n }
}

// WithHistoryDays sets the dashboard chart window. Zero charts everything.
func WithHistoryDays(n int) MealOption {
	return func(s *MealService) { s.historyDays = n }
}

func NewMealService(st store.Store, eng *engine.Engine, log *zap.Logger, opts ...MealOption) *MealService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MealService{
		store:       st,
		engine:      eng,
		log:         log,
		now:         time.Now,
		events:      nopSink{},
		maxCalories: DefaultMaxCalories,
		historyDays: 7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MealService) Engine() *engine.Engine { return s.engine }

func (s *MealService) Today() engine.Day { return s.engine.Today(s.now()) }

// LogMealRequest is what the meal form submits.
type LogMealRequest struct {
	Person      string `json:"person" binding:"required"`
	Meal        string `json:"meal" binding:"required"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

type LoggedMeal struct {
	Entry models.MealEntry `json:"entry"`
	Tier  engine.Tier      `json:"tier"`
	Roast string           `json:"roast"`
}

func (s *MealService) validate(req LogMealRequest) (LogMealRequest, error) {
	req.Person = strings.TrimSpace(req.Person)
	req.Meal = strings.TrimSpace(req.Meal)
	req.Description = strings.TrimSpace(req.Description)

	if req.Person == "" {
		return req, fmt.Errorf("%w: person is required", ErrInvalidMeal)
	}
	profiles := s.engine.Profiles()
	if len(profiles.People) > 0 && !profiles.Knows(req.Person) {
		return req, fmt.Errorf("%w: unknown person %q", ErrInvalidMeal, req.Person)
	}
	if req.Meal == "" {
		return req, fmt.Errorf("%w: meal name is required", ErrInvalidMeal)
	}
	if req.Calories < 0 || req.Calories > s.maxCalories {
		return req, fmt.Errorf("%w: calories must be between 0 and %d", ErrInvalidMeal, s.maxCalories)
	}
	return req, nil
}

// LogMeal stores a new entry stamped with the injected clock and classifies it.
func (s *MealService) LogMeal(ctx context.Context, req LogMealRequest) (*LoggedMeal, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	in := models.NewMealEntry{
		Person:      req.Person,
		Meal:        req.Meal,
		Calories:    req.Calories,
		Description: req.Description,
		LoggedAt:    s.now(),
	}
	id, err := s.store.InsertEntry(ctx, in)
	if err != nil {
		metrics.RecordStoreError("insert")
		s.log.Error("insert meal failed", zap.String("person", in.Person), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	tier := s.engine.ClassifyFor(in.Person, in.Calories)
	out := &LoggedMeal{
		Entry: models.MealEntry{
			ID:          id,
			Person:      in.Person,
			Meal:        in.Meal,
			Calories:    in.Calories,
			Description: in.Description,
			LoggedAt:    in.LoggedAt,
			Comments:    []models.Comment{},
		},
		Tier:  tier,
		Roast: RoastMessage(in.Person, tier),
	}
	metrics.RecordMealLogged(in.Person, string(tier))
	s.log.Info("meal logged",
		zap.String("id", id),
		zap.String("person", in.Person),
		zap.Int("calories", in.Calories),
		zap.String("tier", string(tier)),
	)

	s.events.Emit(ctx, Event{Kind: EventMealLogged, Entry: out.Entry, Tier: tier, Roast: out.Roast})
	return out, nil
}

// PostComment appends a comment and overwrites the entry's comment field.
func (s *MealService) PostComment(ctx context.Context, id, text string) (*models.MealEntry, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var entry *models.MealEntry
	for i := range entries {
		if entries[i].ID == id {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nil, store.ErrNotFound
	}

	comments, err := engine.AppendComment(entry.Comments, text, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateComments(ctx, id, comments); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		metrics.RecordStoreError("update_comments")
		s.log.Error("update comments failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	updated := entry.Clone()
	updated.Comments = comments
	metrics.RecordComment()

	last := comments[len(comments)-1]
	s.events.Emit(ctx, Event{Kind: EventCommentPosted, Entry: updated, Comment: &last})
	return &updated, nil
}

// snapshot lists every row. Failures degrade to an empty snapshot plus warnings.
func (s *MealService) snapshot(ctx context.Context) ([]models.MealEntry, []string) {
	warnings := []string{}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		metrics.RecordStoreError("list")
		s.log.Warn("listing entries failed", zap.Error(err))
		return nil, append(warnings, storageWarning)
	}
	if r, ok := s.store.(store.Reporter); ok {
		if n := r.LastSkipReport().Count(); n > 0 {
			warnings = append(warnings, fmt.Sprintf("%d stored rows could not be read and were skipped", n))
		}
	}
	return entries, warnings
}

type DashboardView struct {
	engine.Dashboard
	Warnings []string `json:"warnings"`
}

func (s *MealService) Dashboard(ctx context.Context) DashboardView {
	entries, warnings := s.snapshot(ctx)
	return DashboardView{
		Dashboard: s.engine.Dashboard(entries, s.now(), s.historyDays),
		Warnings:  warnings,
	}
}

type FeedView struct {
	Day      *engine.Day        `json:"day,omitempty"`
	Entries  []models.MealEntry `json:"entries"`
	Warnings []string           `json:"warnings"`
}

// Feed lists one civil day's entries, today when day is zero.
func (s *MealService) Feed(ctx context.Context, day engine.Day) FeedView {
	if day.IsZero() {
		day = s.Today()
	}
	entries, warnings := s.snapshot(ctx)
	return FeedView{Day: &day, Entries: s.engine.SelectByDay(entries, day), Warnings: warnings}
}

// AllEntries lists every usable entry newest first.
func (s *MealService) AllEntries(ctx context.Context) FeedView {
	entries, warnings := s.snapshot(ctx)
	return FeedView{Entries: s.engine.Feed(entries), Warnings: warnings}
}

type LeaderboardView struct {
	Day       engine.Day        `json:"day"`
	Standings []engine.Standing `json:"standings"`
	Warnings  []string          `json:"warnings"`
}

func (s *MealService) Leaderboard(ctx context.Context, day engine.Day) LeaderboardView {
	if day.IsZero() {
		day = s.Today()
	}
	entries, warnings := s.snapshot(ctx)
	return LeaderboardView{Day: day, Standings: s.engine.Leaderboard(entries, day), Warnings: warnings}
}

type ComparisonsView struct {
	People   []engine.PersonComparison `json:"people"`
	Warnings []string                  `json:"warnings"`
}

func (s *MealService) Comparisons(ctx context.Context) ComparisonsView {
	entries, warnings := s.snapshot(ctx)
	return ComparisonsView{People: s.engine.CompareAll(entries), Warnings: warnings}
}

type SeriesView struct {
	engine.Series
	Warnings []string `json:"warnings"`
}

// Series charts [from, to]. Both zero charts the whole logged range; one
// zero bound is filled from the other end of the history window. Explicit
// ranges longer than the engine's series limit are rejected.
func (s *MealService) Series(ctx context.Context, from, to engine.Day) (SeriesView, error) {
	limit := s.engine.MaxSeriesDays()
	if !from.IsZero() || !to.IsZero() {
		if to.IsZero() {
			to = s.Today()
		}
		if from.IsZero() {
			from = to.AddDays(-(min(max(s.historyDays, 1), limit) - 1))
		}
		if from.After(to) {
			return SeriesView{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from, to)
		}
		if days := from.DaysUntil(to) + 1; days > limit {
			return SeriesView{}, fmt.Errorf("%w: %d days requested, limit is %d", ErrInvalidRange, days, limit)
		}
	}

	entries, warnings := s.snapshot(ctx)
	var series engine.Series
	if from.IsZero() {
		series = s.engine.DailySeries(entries)
	} else {
		series = s.engine.DailySeriesRange(entries, from, to)
	}
	return SeriesView{Series: series, Warnings: warnings}, nil
}

type ClassifyView struct {
	Person   string      `json:"person"`
	Calories int         `json:"calories"`
	Goal     int         `json:"daily_goal"`
	Tier     engine.Tier `json:"tier"`
	Roast    string      `json:"roast"`
}

// Classify previews the tier a meal would get without storing it.
func (s *MealService) Classify(person string, calories int) ClassifyView {
	tier := s.engine.ClassifyFor(person, calories)
	return ClassifyView{
		Person:   person,
		Calories: calories,
		Goal:     s.engine.Profiles().Lookup(person).DailyCalorieGoal,
		Tier:     tier,
		Roast:    RoastMessage(person, tier),
	}
}
