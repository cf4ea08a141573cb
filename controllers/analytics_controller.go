// controllers/analytics_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ronit-gandhi/meal-shame-tracker/services"
)

type AnalyticsController struct {
	Meals *services.MealService
}

func NewAnalyticsController(meals *services.MealService) *AnalyticsController {
	return &AnalyticsController{Meals: meals}
}

func (h *AnalyticsController) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.Meals.Dashboard(c.Request.Context()))
}

func (h *AnalyticsController) Leaderboard(c *gin.Context) {
	day, ok := dayParam(c, "day")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Meals.Leaderboard(c.Request.Context(), day))
}

func (h *AnalyticsController) Comparisons(c *gin.Context) {
	c.JSON(http.StatusOK, h.Meals.Comparisons(c.Request.Context()))
}

func (h *AnalyticsController) Series(c *gin.Context) {
	from, ok := dayParam(c, "from")
	if !ok {
		return
	}
	to, ok := dayParam(c, "to")
	if !ok {
		return
	}
	out, err := h.Meals.Series(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsController) Classify(c *gin.Context) {
	person := c.Query("person")
	if person == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person is required"})
		return
	}
	calories, err := strconv.Atoi(c.Query("calories"))
	if err != nil || calories < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "calories must be a non-negative integer"})
		return
	}
	c.JSON(http.StatusOK, h.Meals.Classify(person, calories))
}
