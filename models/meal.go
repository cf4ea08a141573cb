package models

import (
	"time"
)

// MealEntry is one logged meal. Only Comments changes after creation.
type MealEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Person      string    `gorm:"index;not null" json:"person"`
	Meal        string    `json:"meal"`
	Calories    int       `gorm:"not null" json:"calories"`
	Description string    `gorm:"type:text" json:"description"`
	LoggedAt    time.Time `gorm:"index;not null" json:"logged_at"` // zero when the stored timestamp could not be parsed
	Comments    []Comment `gorm:"foreignKey:MealEntryID;constraint:OnDelete:CASCADE" json:"comments"`
}

// Comment is a timestamped remark on an entry, kept in posting order.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	MealEntryID string    `gorm:"index;size:36;not null" json:"-"`
	Position    int       `gorm:"not null" json:"-"`
	At          time.Time `json:"at"`
	Text        string    `gorm:"type:text" json:"text"`
}

// NewMealEntry is what the form submits; the store assigns the ID.
type NewMealEntry struct {
	Person      string
	Meal        string
	Calories    int
	Description string
	LoggedAt    time.Time
}

// Clone returns a copy that shares no comment storage with e.
func (e MealEntry) Clone() MealEntry {
	out := e
	if e.Comments != nil {
		out.Comments = make([]Comment, len(e.Comments))
		copy(out.Comments, e.Comments)
	}
	return out
}

// CloneEntries deep-copies a snapshot.
func CloneEntries(entries []MealEntry) []MealEntry {
	if entries == nil {
		return nil
	}
	out := make([]MealEntry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}
