package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore is an in-memory Store that counts list calls.
type countingStore struct {
	entries []models.MealEntry
	lists   int
	listErr error
}

func (s *countingStore) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return models.CloneEntries(s.entries), nil
}

func (s *countingStore) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	id := time.Now().Format(time.RFC3339Nano)
	s.entries = append(s.entries, models.MealEntry{ID: id, Person: in.Person, Calories: in.Calories, LoggedAt: in.LoggedAt})
	return id, nil
}

func (s *countingStore) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Comments = comments
			return nil
		}
	}
	return ErrNotFound
}

func TestCached_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{entries: []models.MealEntry{{ID: "1", Person: "Ronit", Calories: 100}}}
	c := NewCached(inner, 30*time.Second)

	_, err := c.ListEntries(ctx)
	require.NoError(t, err)
	_, err = c.ListEntries(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.lists)
}

func TestCached_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	c := NewCached(inner, time.Minute)

	entries, err := c.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	id, err := c.InsertEntry(ctx, models.NewMealEntry{Person: "Ronit", Calories: 500, LoggedAt: time.Now()})
	require.NoError(t, err)

	entries, err = c.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, inner.lists)

	require.NoError(t, c.UpdateComments(ctx, id, []models.Comment{{Text: "hmm"}}))
	entries, err = c.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries[0].Comments, 1)
	assert.Equal(t, 3, inner.lists)
}

func TestCached_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{entries: []models.MealEntry{{ID: "1", Comments: []models.Comment{{Text: "a"}}}}}
	c := NewCached(inner, time.Minute)

	first, err := c.ListEntries(ctx)
	require.NoError(t, err)
	first[0].Comments[0].Text = "mutated"

	second, err := c.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].Comments[0].Text)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{listErr: errors.New("down")}
	c := NewCached(inner, time.Minute)

	_, err := c.ListEntries(ctx)
	require.Error(t, err)

	inner.listErr = nil
	_, err = c.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lists)
}

func TestNewCached_ClampsTTL(t *testing.T) {
	c := NewCached(&countingStore{}, time.Hour)
	require.NotNil(t, c)
	// an hour-long TTL would still be served from cache after a write without the purge
	_, _ = c.ListEntries(context.Background())
	_, _ = c.InsertEntry(context.Background(), models.NewMealEntry{Person: "x"})
	entries, err := c.ListEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// stallingStore holds its first list call until released, returning the rows
// it saw when the call started.
type stallingStore struct {
	mu      sync.Mutex
	entries []models.MealEntry
	lists   int
	started chan struct{}
	release chan struct{}
}

func (s *stallingStore) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	s.mu.Lock()
	s.lists++
	first := s.lists == 1
	snapshot := models.CloneEntries(s.entries)
	s.mu.Unlock()

	if first {
		close(s.started)
		<-s.release
	}
	return snapshot, nil
}

func (s *stallingStore) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := in.Person
	s.entries = append(s.entries, models.MealEntry{ID: id, Person: in.Person, Calories: in.Calories, LoggedAt: in.LoggedAt})
	return id, nil
}

func (s *stallingStore) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	return ErrNotFound
}

func TestCached_WriteDuringMissIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	inner := &stallingStore{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCached(inner, time.Minute)

	done := make(chan []models.MealEntry)
	go func() {
		entries, err := c.ListEntries(ctx)
		assert.NoError(t, err)
		done <- entries
	}()

	<-inner.started
	_, err := c.InsertEntry(ctx, models.NewMealEntry{Person: "Ronit", Calories: 800, LoggedAt: time.Now()})
	require.NoError(t, err)

	close(inner.release)
	assert.Empty(t, <-done)

	entries, err := c.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ronit", entries[0].Person)
	assert.Equal(t, 2, inner.lists)
}

type reportingStore struct {
	countingStore
	report SkipReport
}

func (s *reportingStore) LastSkipReport() SkipReport { return s.report }

func TestCached_ForwardsSkipReport(t *testing.T) {
	ctx := context.Background()
	inner := &reportingStore{
		countingStore: countingStore{entries: []models.MealEntry{{ID: "1", Person: "Ronit", Calories: 100}}},
		report:        SkipReport{Skipped: []RowError{{Row: 3, Err: errors.New("bad calories")}}},
	}
	c := NewCached(inner, time.Minute)

	_, err := c.ListEntries(ctx)
	require.NoError(t, err)
	// served from cache, the backend's last report still applies
	_, err = c.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.lists)
	assert.Equal(t, 1, c.LastSkipReport().Count())

	var _ Reporter = c
	assert.Zero(t, NewCached(&countingStore{}, time.Minute).LastSkipReport().Count())
}
