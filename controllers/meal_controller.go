// controllers/meal_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/services"
	"github.com/ronit-gandhi/meal-shame-tracker/store"
)

type MealController struct {
	Meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{Meals: meals}
}

func (mc *MealController) LogMeal(c *gin.Context) {
	var req services.LogMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := mc.Meals.LogMeal(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// ListMeals serves ?day=YYYY-MM-DD (default today) or ?all=true.
func (mc *MealController) ListMeals(c *gin.Context) {
	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, mc.Meals.AllEntries(c.Request.Context()))
		return
	}
	day, ok := dayParam(c, "day")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mc.Meals.Feed(c.Request.Context(), day))
}

type commentReq struct {
	Text string `json:"text"`
}

func (mc *MealController) PostComment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := mc.Meals.PostComment(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// --- helpers ---

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMeal), errors.Is(err, services.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment is empty", "warning": "Write something before posting."})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meal entry not found"})
	case errors.Is(err, services.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again shortly"})
	case errors.Is(err, services.ErrDigestNotConfigured):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// dayParam parses an optional YYYY-MM-DD query value. It writes the 400 itself.
func dayParam(c *gin.Context, key string) (engine.Day, bool) {
	v := c.Query(key)
	if v == "" {
		return engine.Day{}, true
	}
	day, err := engine.ParseDay(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " date"})
		return engine.Day{}, false
	}
	return day, true
}
