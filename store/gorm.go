package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"gorm.io/gorm"
)

// Gorm stores entries in meal_entries with comments in their own table.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates the two tables.
func (s *Gorm) Migrate() error {
	return s.db.AutoMigrate(&models.MealEntry{}, &models.Comment{})
}

func (s *Gorm) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	var entries []models.MealEntry
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("logged_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Comments == nil {
			entries[i].Comments = []models.Comment{}
		}
	}
	return entries, nil
}

func (s *Gorm) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	e := &models.MealEntry{
		ID:          uuid.NewString(),
		Person:      in.Person,
		Meal:        in.Meal,
		Calories:    in.Calories,
		Description: in.Description,
		LoggedAt:    in.LoggedAt,
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return "", err
	}
	return e.ID, nil
}

// UpdateComments replaces the entry's comment rows in one transaction.
func (s *Gorm) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.MealEntry
		if err := tx.Select("id").Where("id = ?", id).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}

		if err := tx.Where("meal_entry_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if len(comments) == 0 {
			return nil
		}

		rows := make([]models.Comment, len(comments))
		for i, c := range comments {
			rows[i] = models.Comment{
				MealEntryID: id,
				Position:    i,
				At:          c.At,
				Text:        c.Text,
			}
		}
		return tx.Create(&rows).Error
	})
}
