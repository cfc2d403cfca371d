package config

import (
	"sort"
	"strings"
)

// SetDisplayName stores a trimmed display name, keeping the entry's other fields.
func (c Config) SetDisplayName(name, displayName string) {
	entry := c[name]
	entry.DisplayName = strings.TrimSpace(displayName)
	c[name] = entry
}

// ClearDisplayName drops the override and removes the entry once nothing is left in it.
func (c Config) ClearDisplayName(name string) {
	entry, ok := c[name]
	if !ok {
		return
	}
	entry.DisplayName = ""
	if entry.IsZero() {
		delete(c, name)
		return
	}
	c[name] = entry
}

func (c Config) AddManual(name, originalPath, displayName string) {
	c[name] = ProjectEntry{
		DisplayName:   strings.TrimSpace(displayName),
		ManuallyAdded: true,
		OriginalPath:  originalPath,
	}
}

func (c Config) Remove(name string) bool {
	if _, ok := c[name]; !ok {
		return false
	}
	delete(c, name)
	return true
}

// ManualEntries returns the names of manually added projects, sorted.
func (c Config) ManualEntries() []string {
	var out []string
	for name, entry := range c {
		if entry.ManuallyAdded {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
