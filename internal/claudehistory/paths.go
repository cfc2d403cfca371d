package claudehistory

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvClaudeDir     = "CLAUDE_DIR"
	projectsDirName  = "projects"
	metadataFileName = "metadata.json"
)

func ResolveClaudeDir(override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return filepath.Clean(os.ExpandEnv(v)), nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvClaudeDir)); v != "" {
		return filepath.Clean(os.ExpandEnv(v)), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude"), nil
}

// EncodeProjectName turns an absolute path into a project name.
func EncodeProjectName(absPath string) string {
	return strings.ReplaceAll(filepath.ToSlash(absPath), "/", "-")
}

// DecodeProjectName reverses EncodeProjectName. Lossy: a '-' that was part of
// the original path also becomes '/'.
func DecodeProjectName(name string) string {
	return strings.ReplaceAll(name, "-", "/")
}

// validProjectName rejects names that would escape the projects directory.
func validProjectName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}

func isDir(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
