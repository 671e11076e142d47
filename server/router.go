// Package server exposes the section service over HTTP
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aggieseek/seatwatch/api"
	"github.com/aggieseek/seatwatch/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Config struct {
	Port         string
	CORSOrigins  []string
	IsProduction bool
	// ServiceName names the spans of the tracing middleware. Empty
	// disables it.
	ServiceName string
}

// NewRouter builds the engine with all routes mounted
func NewRouter(svc Service, cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(timer())
	router.Use(cors(cfg.CORSOrigins))

	SetupRoutes(router, NewHandler(svc))
	return router
}

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": api.VersionString()})
	})

	classes := router.Group("/classes/:term")
	{
		classes.GET("/", h.Classes)
		classes.GET("/:crn/", h.Section)
		classes.GET("/:crn/seats/", h.Seats)
	}

	router.GET("/terms/", h.Terms)
	router.GET("/terms/:term", h.Term)

	subjects := router.Group("/subjects/:term")
	{
		subjects.GET("/", h.Subjects)
		subjects.GET("/:subject", h.Courses)
		subjects.GET("/:subject/:course", h.Sections)
	}
}

// Run serves router until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, router http.Handler, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
