package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAPI is the slice of the Sheets values API the store needs.
type SheetsAPI interface {
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error)
	AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error
}

type sheetsValues struct {
	svc *sheets.Service
}

// NewSheetsAPI builds a client from a service-account JSON key file.
func NewSheetsAPI(ctx context.Context, credentialsFile string) (SheetsAPI, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &sheetsValues{svc: svc}, nil
}

func (v *sheetsValues) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]interface{}, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v *sheetsValues) AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error {
	_, err := v.svc.Spreadsheets.Values.
		Append(spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (v *sheetsValues) UpdateValues(ctx context.Context, spreadsheetID, rng string, rows [][]interface{}) error {
	_, err := v.svc.Spreadsheets.Values.
		Update(spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// Sheets keeps the table in one worksheet, header on row 1.
type Sheets struct {
	api           SheetsAPI
	spreadsheetID string
	sheet         string
	codec         Codec
	log           *zap.Logger

	mu       sync.Mutex
	lastSkip SkipReport
}

func NewSheets(api SheetsAPI, spreadsheetID, sheet string, codec Codec, log *zap.Logger) *Sheets {
	if sheet == "" {
		sheet = "Sheet1"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sheets{api: api, spreadsheetID: spreadsheetID, sheet: sheet, codec: codec, log: log}
}

func (s *Sheets) tableRange() string {
	return fmt.Sprintf("%s!A:%s", s.sheet, columnLetter(len(Columns)-1))
}

func (s *Sheets) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.tableRange())
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", s.sheet, err)
	}

	var rep SkipReport
	entries := make([]models.MealEntry, 0, len(values))
	for i, raw := range values {
		row := cellStrings(raw)
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}
		e, err := s.codec.DecodeRow(row)
		if err != nil {
			rep.add(i+1, e.ID, err)
			continue
		}
		entries = append(entries, e)
	}

	s.mu.Lock()
	s.lastSkip = rep
	s.mu.Unlock()
	logSkipped(s.log, "sheets", rep)
	metrics.RecordRowsSkipped("sheets", rep.Count())
	return entries, nil
}

func (s *Sheets) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.sheet+"!A1:A1")
	if err != nil {
		return "", fmt.Errorf("read sheet header: %w", err)
	}

	id := uuid.NewString()
	row := s.codec.EncodeRow(models.MealEntry{
		ID:          id,
		Person:      in.Person,
		Meal:        in.Meal,
		Calories:    in.Calories,
		Description: in.Description,
		LoggedAt:    in.LoggedAt,
	})

	rows := [][]interface{}{cellValues(row)}
	if len(values) == 0 {
		rows = append([][]interface{}{cellValues(Columns)}, rows...)
	}
	if err := s.api.AppendRows(ctx, s.spreadsheetID, s.tableRange(), rows); err != nil {
		return "", fmt.Errorf("append row: %w", err)
	}
	return id, nil
}

// UpdateComments finds the entry's row by id and overwrites its comments cell.
func (s *Sheets) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.sheet+"!A:A")
	if err != nil {
		return fmt.Errorf("read sheet ids: %w", err)
	}
	rowNum := 0
	for i, raw := range values {
		if len(raw) > 0 && strings.TrimSpace(fmt.Sprint(raw[0])) == id {
			rowNum = i + 1
			break
		}
	}
	if rowNum == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	cell := fmt.Sprintf("%s!%s%d", s.sheet, columnLetter(colComments), rowNum)
	blob := s.codec.JoinComments(comments)
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, cell, [][]interface{}{{blob}}); err != nil {
		return fmt.Errorf("update %s: %w", cell, err)
	}
	return nil
}

func (s *Sheets) LastSkipReport() SkipReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSkip
}

// columnLetter maps a zero-based column index to A..Z.
func columnLetter(i int) string {
	return string(rune('A' + i))
}

func cellStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func cellValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
