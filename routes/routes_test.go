package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ronit-gandhi/meal-shame-tracker/controllers"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/services"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, csvPath string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 19, 0, 0, 0, loc)

	eng := engine.New(loc, engine.Profiles{
		Default: engine.Profile{DailyCalorieGoal: 2000, EstimatedTDEE: 2200},
		People: map[string]engine.Profile{
			"Brother": {DailyCalorieGoal: 2500, EstimatedTDEE: 2800},
			"Ronit":   {},
		},
	})
	st := store.NewCached(store.NewCSV(csvPath, store.Codec{Loc: loc}, zap.NewNop()), time.Minute)
	hub := services.NewRealtimeHub(nil)
	meals := services.NewMealService(st, eng, zap.NewNop(),
		services.WithClock(func() time.Time { return now }),
		services.WithEvents(services.NewAlertBus(hub, nil, nil)),
	)

	return SetupRouter(Deps{
		Meals:     controllers.NewMealController(meals),
		Analytics: controllers.NewAnalyticsController(meals),
		Realtime:  controllers.NewRealtimeController(hub),
		Admin:     controllers.NewAdminController(nil, nil),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestMealLifecycle(t *testing.T) {
	r := newTestRouter(t, filepath.Join(t.TempDir(), "meals.csv"))

	w := do(t, r, http.MethodPost, "/meals", gin.H{"person": "Ronit", "meal": "Wings", "calories": 2300})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	logged := decode(t, w)
	assert.Equal(t, "MODERATE", logged["tier"])
	id := logged["entry"].(map[string]any)["id"].(string)
	require.NotEmpty(t, id)

	// The write is visible immediately despite the row cache.
	w = do(t, r, http.MethodGet, "/meals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode(t, w)
	assert.Equal(t, "2024-03-01", feed["day"])
	require.Len(t, feed["entries"], 1)

	w = do(t, r, http.MethodPost, "/meals/"+id+"/comments", gin.H{"text": "  bold choice  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comments := decode(t, w)["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "bold choice", comments[0].(map[string]any)["text"])

	w = do(t, r, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	standings := decode(t, w)["standings"].([]any)
	require.Len(t, standings, 1)
	assert.Equal(t, float64(2300), standings[0].(map[string]any)["total_calories"])

	w = do(t, r, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode(t, w)
	assert.Equal(t, "2024-03-01", dash["today"])
	assert.Empty(t, dash["warnings"])
	assert.Len(t, dash["comparisons"], 2)

	w = do(t, r, http.MethodGet, "/meals?all=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "day")
}

func TestLogMeal_BadRequests(t *testing.T) {
	r := newTestRouter(t, filepath.Join(t.TempDir(), "meals.csv"))

	cases := map[string]any{
		"malformed json":   "{",
		"missing meal":     gin.H{"person": "Ronit", "calories": 10},
		"unknown person":   gin.H{"person": "Nobody", "meal": "Toast", "calories": 10},
		"too many":         gin.H{"person": "Ronit", "meal": "Toast", "calories": 3001},
		"negative":         gin.H{"person": "Ronit", "meal": "Toast", "calories": -5},
		"calories as text": `{"person":"Ronit","meal":"Toast","calories":"lots"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/meals", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestPostComment_Errors(t *testing.T) {
	r := newTestRouter(t, filepath.Join(t.TempDir(), "meals.csv"))
	w := do(t, r, http.MethodPost, "/meals", gin.H{"person": "Brother", "meal": "Salad", "calories": 400})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["entry"].(map[string]any)["id"].(string)

	w = do(t, r, http.MethodPost, "/meals/"+id+"/comments", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "comment is empty", decode(t, w)["error"])

	w = do(t, r, http.MethodPost, "/meals/does-not-exist/comments", gin.H{"text": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsQueries(t *testing.T) {
	r := newTestRouter(t, filepath.Join(t.TempDir(), "meals.csv"))

	w := do(t, r, http.MethodGet, "/classify?person=Ronit&calories=2600", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SEVERE", decode(t, w)["tier"])

	w = do(t, r, http.MethodGet, "/classify?person=Ronit&calories=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/leaderboard?day=03/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/series?from=2024-03-02&to=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/series?from=0001-01-01&to=9999-12-31", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/series?from=2024-02-28&to=2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	series := decode(t, w)
	assert.Len(t, series["days"], 3)
	assert.Len(t, series["persons"], 2)

	w = do(t, r, http.MethodGet, "/comparisons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["people"], 2)
}

func TestStorageUnavailable(t *testing.T) {
	// A directory cannot be read or appended to as a CSV file.
	r := newTestRouter(t, t.TempDir())

	w := do(t, r, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["warnings"])

	w = do(t, r, http.MethodPost, "/meals", gin.H{"person": "Ronit", "meal": "Toast", "calories": 100})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOpsEndpoints(t *testing.T) {
	r := newTestRouter(t, filepath.Join(t.TempDir(), "meals.csv"))

	w := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "meal_tracker_http_requests_total")

	w = do(t, r, http.MethodPost, "/admin/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = do(t, r, http.MethodPost, "/admin/digest", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
