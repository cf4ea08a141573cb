package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"go.uber.org/zap"
)

// CSV keeps the table in one file with a header row. The mutex only
// serialises this process.
type CSV struct {
	path  string
	codec Codec
	log   *zap.Logger

	mu       sync.Mutex
	lastSkip SkipReport
}

func NewCSV(path string, codec Codec, log *zap.Logger) *CSV {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSV{path: path, codec: codec, log: log}
}

func (s *CSV) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	var rep SkipReport
	entries := make([]models.MealEntry, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		e, err := s.codec.DecodeRow(row)
		if err != nil {
			rep.add(i+1, e.ID, err)
			continue
		}
		entries = append(entries, e)
	}
	s.lastSkip = rep
	logSkipped(s.log, "csv", rep)
	metrics.RecordRowsSkipped("csv", rep.Count())
	return entries, nil
}

func (s *CSV) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	row := s.codec.EncodeRow(models.MealEntry{
		ID:          id,
		Person:      in.Person,
		Meal:        in.Meal,
		Calories:    in.Calories,
		Description: in.Description,
		LoggedAt:    in.LoggedAt,
	})

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Columns); err != nil {
			return "", err
		}
	}
	if err := w.Write(row); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	return id, nil
}

// UpdateComments rewrites the file with one cell replaced. Rows that do not
// parse are written back untouched.
func (s *CSV) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}

	found := false
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) == 0 || row[colID] != id {
			continue
		}
		for len(row) < len(Columns) {
			row = append(row, "")
		}
		row[colComments] = s.codec.JoinComments(comments)
		rows[i] = row
		found = true
		break
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.writeRows(rows)
}

func (s *CSV) LastSkipReport() SkipReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSkip
}

func (s *CSV) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSV) writeRows(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".meals-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
