package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
)

var ErrEmptyComment = errors.New("comment is empty")

// AppendComment returns a new slice with the trimmed text appended. The
// input is never modified. Blank text returns the input and ErrEmptyComment.
func AppendComment(comments []models.Comment, text string, at time.Time) ([]models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return comments, ErrEmptyComment
	}
	out := make([]models.Comment, len(comments), len(comments)+1)
	copy(out, comments)
	out = append(out, models.Comment{At: at, Text: text})
	for i := range out {
		out[i].Position = i
	}
	return out, nil
}
