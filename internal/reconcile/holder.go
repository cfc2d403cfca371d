package reconcile

import (
	"log/slog"
	"sync"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

// Holder owns a client's project snapshot and its current selection.
// Background refreshes go through Offer; the client's own changes go through
// Replace.
type Holder struct {
	mu       sync.Mutex
	projects []claudehistory.Project
	selected Ref
	active   *Active
	log      *slog.Logger
}

func NewHolder(active *Active) *Holder {
	if active == nil {
		active = NewActive()
	}
	return &Holder{active: active, log: logger.Component("reconcile")}
}

func (h *Holder) Active() *Active { return h.active }

func (h *Holder) Snapshot() []claudehistory.Project {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projects
}

func (h *Holder) Selection() Ref {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected
}

// Select sets the selected project and session. An empty session keeps only
// the project selected.
func (h *Holder) Select(project, session string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = Ref{Project: project, Session: session}
	if project == "" {
		h.selected.Session = ""
	}
}

// Offer applies a background refresh unless it would disturb the selected
// session while that session, or a not yet named one, is active. It reports
// whether the refresh was applied.
func (h *Holder) Offer(incoming []claudehistory.Project) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.protecting() {
		ref := h.selected
		if !ShouldAccept(h.projects, incoming, &ref) {
			h.log.Debug("skipping disruptive refresh", "project", ref.Project, "session", ref.Session)
			return false
		}
	}
	h.applyLocked(incoming)
	return true
}

// Replace installs a snapshot unconditionally.
func (h *Holder) Replace(projects []claudehistory.Project) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applyLocked(projects)
}

func (h *Holder) protecting() bool {
	if h.selected.Session != "" && h.active.IsActive(h.selected.Session) {
		return true
	}
	return h.active.HasTemporary()
}

func (h *Holder) applyLocked(projects []claudehistory.Project) {
	h.projects = projects
	if h.selected.Project == "" {
		return
	}
	project, ok := claudehistory.FindProject(projects, h.selected.Project)
	if !ok {
		h.selected = Ref{}
		return
	}
	if h.selected.Session != "" {
		if _, ok := project.FindSession(h.selected.Session); !ok {
			h.selected.Session = ""
		}
	}
}
