package claudehistory

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// deriveDisplayName picks a label for a project without a configured one:
// the package.json name, then the go.mod module's last path element, then a
// shortened form of the path itself.
func deriveDisplayName(projectPath string) string {
	if name := packageJSONName(projectPath); name != "" {
		return name
	}
	if name := goModuleName(projectPath); name != "" {
		return name
	}
	return shortPath(projectPath)
}

func packageJSONName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return strings.TrimSpace(pkg.Name)
}

func goModuleName(dir string) string {
	gomod := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return ""
	}
	mod := modfile.ModulePath(data)
	if mod == "" {
		return ""
	}
	return path.Base(mod)
}

// shortPath keeps absolute paths of more than three segments down to
// ".../<parent>/<leaf>".
func shortPath(p string) string {
	slashed := filepath.ToSlash(p)
	if !strings.HasPrefix(slashed, "/") {
		return p
	}
	var parts []string
	for _, part := range strings.Split(slashed, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 3 {
		return ".../" + strings.Join(parts[len(parts)-2:], "/")
	}
	return p
}
