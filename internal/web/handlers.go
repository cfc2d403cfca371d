package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
)

type renameRequest struct {
	DisplayName string `json:"displayName"`
}

type createProjectRequest struct {
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
}

func (s *Server) handleSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.ui)
}

func (s *Server) handleProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.ListProjects(c.Request.Context()))
}

func (s *Server) handleSessions(c *gin.Context) {
	limit := queryInt(c, "limit", claudehistory.DefaultPageSize)
	offset := queryInt(c, "offset", 0)
	c.JSON(http.StatusOK, s.store.Sessions(c.Request.Context(), c.Param("project"), limit, offset))
}

func (s *Server) handleMessages(c *gin.Context) {
	messages := s.store.Messages(c.Request.Context(), c.Param("project"), c.Param("session"))
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) handleRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.store.Rename(c.Param("project"), req.DisplayName); err != nil {
		s.respondError(c, err)
		return
	}
	s.afterMutation()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.store.DeleteSession(c.Request.Context(), c.Param("project"), c.Param("session")); err != nil {
		s.respondError(c, err)
		return
	}
	s.afterMutation()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.store.DeleteProject(c.Request.Context(), c.Param("project")); err != nil {
		s.respondError(c, err)
		return
	}
	s.afterMutation()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	project, err := s.store.AddManually(req.Path, req.DisplayName)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.afterMutation()
	c.JSON(http.StatusOK, gin.H{"success": true, "project": project})
}

// afterMutation pushes the new listing to WebSocket clients. Config-only
// changes are invisible to the file watcher, so mutations announce themselves.
func (s *Server) afterMutation() {
	go s.BroadcastProjects(context.Background())
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch claudehistory.KindOf(err) {
	case claudehistory.KindNotFound:
		return http.StatusNotFound
	case claudehistory.KindConflict:
		return http.StatusConflict
	case claudehistory.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
