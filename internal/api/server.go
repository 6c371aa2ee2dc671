// Package api provides the local REST API for inspecting and editing the
// running keyboard.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
)

// Backend runs functions against the live grid. engine.Engine implements it.
type Backend interface {
	Do(ctx context.Context, fn func(g *keystate.Grid)) error
	Snapshot(ctx context.Context) (keystate.Snapshot, error)
}

// Server serves the REST API.
type Server struct {
	backend   Backend
	supported func(keys.Code) bool
	log       *slog.Logger
	router    *gin.Engine

	onKeymapChanged []func(*keymap.Keymap)
}

// New creates a server. supported filters keys that the input backend cannot
// inject; nil accepts every key.
func New(backend Backend, supported func(keys.Code) bool, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if supported == nil {
		supported = func(keys.Code) bool { return true }
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		backend:   backend,
		supported: supported,
		log:       logger,
		router:    gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/status", s.status)
		v1.GET("/keys", listKeys)
		v1.GET("/keymap", s.getKeymap)
		v1.PUT("/keymap/:col/:row/:layer", s.setKey)
		v1.POST("/key-events", s.setKeyEvents)
		v1.PUT("/repeat", s.setRepeat)
	}
}

// OnKeymapChanged registers fn to receive a copy of the keymap after every
// successful edit. It runs on the request goroutine.
func (s *Server) OnKeymapChanged(fn func(*keymap.Keymap)) {
	s.onKeymapChanged = append(s.onKeymapChanged, fn)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()
		s.log.Debug("api request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "gopher-linkb",
	})
}
