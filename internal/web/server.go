// Package web serves the session store over HTTP and pushes project updates
// to WebSocket clients.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/netutil"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const (
	maxConnections  = 64
	shutdownTimeout = 5 * time.Second
)

// Store is the part of claudehistory.Store the handlers use.
type Store interface {
	ListProjects(ctx context.Context) []claudehistory.Project
	Sessions(ctx context.Context, name string, limit, offset int) claudehistory.SessionPage
	Messages(ctx context.Context, name, sessionID string) []json.RawMessage
	Rename(name, displayName string) error
	DeleteSession(ctx context.Context, name, sessionID string) error
	DeleteProject(ctx context.Context, name string) error
	AddManually(path, displayName string) (claudehistory.Project, error)
}

// Server is the HTTP API server.
type Server struct {
	store  Store
	ui     config.UISettings
	router *gin.Engine
	hub    *Hub
	log    *slog.Logger
	now    func() time.Time
}

func NewServer(store Store, ui config.UISettings) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:  store,
		ui:     ui,
		router: router,
		hub:    NewHub(),
		log:    logger.Component("web"),
		now:    time.Now,
	}
	router.Use(s.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/settings", s.handleSettings)
		api.GET("/projects", s.handleProjects)
		api.POST("/projects/create", s.handleCreateProject)
		api.GET("/projects/:project/sessions", s.handleSessions)
		api.GET("/projects/:project/sessions/:session/messages", s.handleMessages)
		api.PUT("/projects/:project/rename", s.handleRename)
		api.DELETE("/projects/:project/sessions/:session", s.handleDeleteSession)
		api.DELETE("/projects/:project", s.handleDeleteProject)
	}
	router.GET("/ws", s.handleWebSocket)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Hub() *Hub { return s.hub }

// ProjectsUpdated is the message pushed to WebSocket clients after a change.
type ProjectsUpdated struct {
	Type      string                  `json:"type"`
	Projects  []claudehistory.Project `json:"projects"`
	Timestamp time.Time               `json:"timestamp"`
}

// BroadcastProjects re-lists projects and pushes them to every client.
func (s *Server) BroadcastProjects(ctx context.Context) {
	if s.hub.Len() == 0 {
		return
	}
	s.hub.Broadcast(ProjectsUpdated{
		Type:      "projects_updated",
		Projects:  s.store.ListProjects(ctx),
		Timestamp: s.now().UTC(),
	})
}

// ServeListener serves on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(netutil.LimitListener(ln, maxConnections))
	}()
	s.log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
