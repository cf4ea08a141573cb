package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/ronit-gandhi/meal-shame-tracker/controllers"
	"github.com/ronit-gandhi/meal-shame-tracker/routes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort string

// serveCmd runs the API until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the digest schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	port := a.cfg.Port
	if servePort != "" {
		port = servePort
	}

	scheduler := cron.New(cron.WithLocation(a.cfg.Timezone))
	if a.digest != nil && a.cfg.DigestCron != "" {
		_, err := scheduler.AddFunc(a.cfg.DigestCron, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := a.digest.Send(jobCtx); err != nil {
				a.log.Error("scheduled digest failed", zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
		a.log.Info("digest scheduled", zap.String("cron", a.cfg.DigestCron))
	}
	scheduler.Start()
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(routes.Deps{
		Meals:     controllers.NewMealController(a.meals),
		Analytics: controllers.NewAnalyticsController(a.meals),
		Realtime:  controllers.NewRealtimeController(a.hub),
		Admin:     controllers.NewAdminController(a.export, a.digest),
		Log:       a.log,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", srv.Addr), zap.String("storage", a.cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
