// ABOUTME: HTTP JSON API over the tracker for a browser or phone client.
// ABOUTME: gin router with permissive CORS and graceful shutdown.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/medconfig"
	"github.com/harperreed/anchor/internal/tracker"
)

// Handler serves the tracker over HTTP.
type Handler struct {
	tracker *tracker.Tracker
	meds    *medconfig.Provider
	history *history.Reconstructor
}

// NewHandler wires a handler over the tracker and medication config.
func NewHandler(tr *tracker.Tracker, meds *medconfig.Provider) *Handler {
	return &Handler{
		tracker: tr,
		meds:    meds,
		history: &history.Reconstructor{
			Source:      tr,
			Activities:  tr.Activities(),
			Medications: meds,
		},
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.GET("/activities", h.ListActivities)
	api.GET("/medications", h.ListMedications)
	api.PUT("/medications", h.SetMedications)
	api.GET("/days/:date", h.GetDay)
	api.DELETE("/days/:date", h.ResetDay)
	api.PUT("/days/:date/entries/:activity", h.SetEntry)
	api.POST("/days/:date/doses/:med/:dose/toggle", h.ToggleDose)
	api.PUT("/days/:date/doses/:med/:dose/time", h.UpdateDoseTime)
	api.PUT("/days/:date/doses/:med/:dose/dosage", h.UpdateDosage)
	api.PUT("/days/:date/evening", h.SetEveningTime)
	api.POST("/days/:date/extras", h.AddExtraMed)
	api.DELETE("/days/:date/extras/:id", h.RemoveExtraMed)
	api.GET("/history/:date", h.GetHistory)
	api.GET("/calendar/:month", h.GetCalendar)
	return r
}

// requestLogger logs each request through slog instead of gin's writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h *Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.tracker.Flush()
	return nil
}
