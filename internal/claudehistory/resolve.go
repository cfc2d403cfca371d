package claudehistory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/baaaaaaaka/claude_sessions/internal/config"
)

type projectMetadata struct {
	Path string `json:"path"`
	Cwd  string `json:"cwd"`
}

// Resolver maps a project name to the working directory it stands for.
type Resolver struct {
	projectsDir string
	config      *config.ProjectStore
}

func NewResolver(projectsDir string, cfg *config.ProjectStore) *Resolver {
	return &Resolver{projectsDir: projectsDir, config: cfg}
}

// Resolve tries, in order: the configured originalPath, the path or cwd in
// the project's metadata.json, and finally the decoded project name.
func (r *Resolver) Resolve(name string) string {
	return r.resolveWith(r.config.Load(), name)
}

func (r *Resolver) resolveWith(cfg config.Config, name string) string {
	if entry, ok := cfg[name]; ok {
		if p := strings.TrimSpace(entry.OriginalPath); p != "" {
			return p
		}
	}
	if p := r.metadataPath(name); p != "" {
		return p
	}
	return DecodeProjectName(name)
}

func (r *Resolver) metadataPath(name string) string {
	if !validProjectName(name) {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(r.projectsDir, name, metadataFileName))
	if err != nil {
		return ""
	}
	var meta projectMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return ""
	}
	if p := strings.TrimSpace(meta.Path); p != "" {
		return p
	}
	return strings.TrimSpace(meta.Cwd)
}
