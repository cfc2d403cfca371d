package claudehistory

import "time"

const DefaultSessionSummary = "New Session"

// Project is one entry of the projects listing. PhysicalPath is the log
// directory and is nil for projects registered by hand that have no log
// directory yet.
type Project struct {
	Name            string      `json:"name"`
	PhysicalPath    *string     `json:"path"`
	DisplayName     string      `json:"displayName"`
	ResolvedPath    string      `json:"fullPath"`
	IsCustomName    bool        `json:"isCustomName"`
	IsManuallyAdded bool        `json:"isManuallyAdded,omitempty"`
	Sessions        []Session   `json:"sessions"`
	SessionMeta     SessionMeta `json:"sessionMeta"`
}

type SessionMeta struct {
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
}

type Session struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	Cwd          string    `json:"cwd"`
}

// SessionPage is one window of a project's sessions, newest activity first.
type SessionPage struct {
	Sessions []Session `json:"sessions"`
	HasMore  bool      `json:"hasMore"`
	Total    int       `json:"total"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

func emptyPage(limit, offset int) SessionPage {
	return SessionPage{Sessions: []Session{}, Offset: offset, Limit: limit}
}

func (p Project) FindSession(id string) (Session, bool) {
	for _, sess := range p.Sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

func FindProject(projects []Project, name string) (Project, bool) {
	for _, p := range projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// FindSessionWithProject returns the first project whose attached page contains id.
func FindSessionWithProject(projects []Project, id string) (Session, Project, bool) {
	for _, project := range projects {
		if sess, ok := project.FindSession(id); ok {
			return sess, project, true
		}
	}
	return Session{}, Project{}, false
}
