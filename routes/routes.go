package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ronit-gandhi/meal-shame-tracker/controllers"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/middlewares"
	"go.uber.org/zap"
)

// Deps is everything the router hands to controllers.
type Deps struct {
	Meals     *controllers.MealController
	Analytics *controllers.AnalyticsController
	Realtime  *controllers.RealtimeController
	Admin     *controllers.AdminController
	Log       *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middlewares.Recovery(d.Log), middlewares.RequestLogger(d.Log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	meals := r.Group("/meals")
	{
		meals.POST("", d.Meals.LogMeal)
		meals.GET("", d.Meals.ListMeals)
		meals.POST("/:id/comments", d.Meals.PostComment)
	}

	r.GET("/dashboard", d.Analytics.Dashboard)
	r.GET("/leaderboard", d.Analytics.Leaderboard)
	r.GET("/comparisons", d.Analytics.Comparisons)
	r.GET("/series", d.Analytics.Series)
	r.GET("/classify", d.Analytics.Classify)

	if d.Realtime != nil {
		r.GET("/ws", d.Realtime.FeedWS)
	}

	if d.Admin != nil {
		admin := r.Group("/admin")
		{
			admin.POST("/export", d.Admin.RunExport)
			admin.POST("/digest", d.Admin.RunDigest)
		}
	}

	return r
}
