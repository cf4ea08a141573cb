package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

// Columns is the flat persisted layout shared by the CSV and Sheets backends.
var Columns = []string{"id", "timestamp", "name", "meal", "calories", "description", "comments"}

const (
	TimestampLayout     = "2006-01-02 15:04:05"
	commentLayout       = "2006-01-02 15:04"
	legacyCommentLayout = "15:04"
	commentSep          = " - "
)

const (
	colID = iota
	colTimestamp
	colName
	colMeal
	colCalories
	colDescription
	colComments
)

// Codec converts entries to flat rows. Timestamps are written in Loc.
type Codec struct {
	Loc *time.Location
}

func (c Codec) loc() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

func (c Codec) EncodeRow(e models.MealEntry) []string {
	row := make([]string, len(Columns))
	row[colID] = e.ID
	if !e.LoggedAt.IsZero() {
		row[colTimestamp] = e.LoggedAt.In(c.loc()).Format(TimestampLayout)
	}
	row[colName] = e.Person
	row[colMeal] = e.Meal
	row[colCalories] = strconv.Itoa(e.Calories)
	row[colDescription] = e.Description
	row[colComments] = c.JoinComments(e.Comments)
	return row
}

// DecodeRow fails with ErrParseFailure when the timestamp or calories are unusable.
func (c Codec) DecodeRow(row []string) (models.MealEntry, error) {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	e := models.MealEntry{
		ID:          strings.TrimSpace(get(colID)),
		Person:      strings.TrimSpace(get(colName)),
		Meal:        get(colMeal),
		Description: get(colDescription),
	}
	if e.ID == "" {
		return e, fmt.Errorf("%w: missing id", ErrParseFailure)
	}

	at, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(get(colTimestamp)), c.loc())
	if err != nil {
		return e, fmt.Errorf("%w: timestamp %q", ErrParseFailure, get(colTimestamp))
	}
	e.LoggedAt = at

	cal, err := parseCalories(get(colCalories))
	if err != nil {
		return e, err
	}
	e.Calories = cal

	e.Comments = c.SplitComments(get(colComments), at)
	return e, nil
}

func parseCalories(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets hand back 650.0 for numeric cells
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%w: calories %q", ErrParseFailure, s)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative calories %d", ErrParseFailure, n)
	}
	return n, nil
}

// JoinComments renders one line per comment: "2006-01-02 15:04 - text".
func (c Codec) JoinComments(comments []models.Comment) string {
	lines := make([]string, 0, len(comments))
	for _, cm := range comments {
		text := strings.Join(strings.Fields(cm.Text), " ")
		if cm.At.IsZero() {
			lines = append(lines, text)
			continue
		}
		lines = append(lines, cm.At.In(c.loc()).Format(commentLayout)+commentSep+text)
	}
	return strings.Join(lines, "\n")
}

// SplitComments reads the blob back. Lines carrying only "HH:MM - text"
// take their date from the entry; lines with no prefix keep the entry time.
func (c Codec) SplitComments(blob string, entryAt time.Time) []models.Comment {
	out := []models.Comment{}
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cm := models.Comment{At: entryAt, Text: line, Position: len(out)}
		if head, text, ok := strings.Cut(line, commentSep); ok {
			if at, err := time.ParseInLocation(commentLayout, head, c.loc()); err == nil {
				cm.At, cm.Text = at, text
			} else if hm, err := time.ParseInLocation(legacyCommentLayout, head, c.loc()); err == nil && !entryAt.IsZero() {
				base := entryAt.In(c.loc())
				cm.At = time.Date(base.Year(), base.Month(), base.Day(), hm.Hour(), hm.Minute(), 0, 0, c.loc())
				cm.Text = text
			}
		}
		out = append(out, cm)
	}
	return out
}

// isHeader reports whether row is the column header (any casing).
func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "id" || first == "timestamp"
}
