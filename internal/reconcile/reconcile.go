// Package reconcile decides when a background refresh of the project list may
// replace the snapshot a client is holding.
package reconcile

import (
	"bytes"
	"encoding/json"

	"github.com/baaaaaaaka/claude_sessions/internal/claudehistory"
)

// Ref names a session inside a project.
type Ref struct {
	Project string
	Session string
}

func (r *Ref) empty() bool {
	return r == nil || r.Project == "" || r.Session == ""
}

// ShouldAccept reports whether incoming may replace current without touching
// the active session. With no active session every refresh is accepted. The
// active session must be present in both snapshots and encode to identical
// JSON; anything else is disruptive.
func ShouldAccept(current, incoming []claudehistory.Project, active *Ref) bool {
	if active.empty() {
		return true
	}
	before, ok := findSession(current, *active)
	if !ok {
		return false
	}
	after, ok := findSession(incoming, *active)
	if !ok {
		return false
	}
	return sameSession(before, after)
}

func findSession(projects []claudehistory.Project, ref Ref) (claudehistory.Session, bool) {
	project, ok := claudehistory.FindProject(projects, ref.Project)
	if !ok {
		return claudehistory.Session{}, false
	}
	return project.FindSession(ref.Session)
}

func sameSession(a, b claudehistory.Session) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
