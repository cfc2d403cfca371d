package reconcile

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TemporaryPrefix marks ids handed out for sessions the writer has not named yet.
const TemporaryPrefix = "new-session-"

// Active is the set of sessions a client is currently driving.
type Active struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewActive() *Active {
	return &Active{ids: map[string]struct{}{}}
}

func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TemporaryPrefix)
}

// NewTemporaryID returns a fresh placeholder id and marks it active.
func (a *Active) NewTemporaryID() string {
	id := TemporaryPrefix + uuid.NewString()
	a.MarkActive(id)
	return id
}

func (a *Active) MarkActive(id string) {
	if id == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids[id] = struct{}{}
}

func (a *Active) MarkInactive(id string) {
	if id == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.ids, id)
}

// ReplaceTemporary drops every placeholder id and marks realID active.
func (a *Active) ReplaceTemporary(realID string) {
	if realID == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.ids {
		if IsTemporaryID(id) {
			delete(a.ids, id)
		}
	}
	a.ids[realID] = struct{}{}
}

func (a *Active) IsActive(id string) bool {
	if id == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[id]
	return ok
}

func (a *Active) HasTemporary() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.ids {
		if IsTemporaryID(id) {
			return true
		}
	}
	return false
}

func (a *Active) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ids)
}

// IDs returns the active ids, sorted.
func (a *Active) IDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
