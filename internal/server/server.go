package server

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

type Server struct {
	Engine *gin.Engine
	Addr   string
	source HealthChecker
}

// HealthChecker is an interface for backends that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

func New(addr string, src HealthChecker, mode string) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFiles, "templates/*.html")))

	s := &Server{
		Engine: r,
		Addr:   addr,
		source: src,
	}

	r.GET("/", s.landingHandler)
	r.GET("/health", s.healthHandler)

	return s
}

// landingHandler serves the portal entry page.
func (s *Server) landingHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", gin.H{})
}

// healthHandler verifies the observation backend is reachable.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.source != nil {
		if err := s.source.Ping(ctx); err != nil {
			slog.Error("Health check failed: observation source unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "observation source unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"source": "connected",
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
