package claudehistory

import (
	"path/filepath"
	"testing"

	"github.com/baaaaaaaka/claude_sessions/internal/config"
)

func TestResolveClaudeDir(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		t.Setenv(EnvClaudeDir, "/from/env")
		got, err := ResolveClaudeDir("/from/flag")
		if err != nil || got != filepath.Clean("/from/flag") {
			t.Fatalf("unexpected %q, %v", got, err)
		}
	})
	t.Run("env", func(t *testing.T) {
		t.Setenv(EnvClaudeDir, "/from/env")
		got, err := ResolveClaudeDir("  ")
		if err != nil || got != filepath.Clean("/from/env") {
			t.Fatalf("unexpected %q, %v", got, err)
		}
	})
	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvClaudeDir, "")
		t.Setenv("HOME", home)
		t.Setenv("USERPROFILE", home)
		got, err := ResolveClaudeDir("")
		if err != nil {
			t.Fatalf("ResolveClaudeDir error: %v", err)
		}
		if got != filepath.Join(home, ".claude") {
			t.Fatalf("unexpected %q", got)
		}
	})
}

func TestProjectNameHelpers(t *testing.T) {
	if got := EncodeProjectName("/home/user/app"); got != "-home-user-app" {
		t.Fatalf("unexpected encoding %q", got)
	}
	if got := DecodeProjectName("-home-user-my-app"); got != "/home/user/my/app" {
		t.Fatalf("unexpected decoding %q", got)
	}
	for _, name := range []string{"", " ", ".", "..", "a/b", `a\b`, "../x"} {
		if validProjectName(name) {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if !validProjectName("-home-user-app") {
		t.Fatalf("expected encoded name to be valid")
	}
	if got := expandHome("~/code", "/h"); got != filepath.Join("/h", "code") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := expandHome("~", "/h"); got != "/h" {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := expandHome("~other/x", "/h"); got != "~other/x" {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestResolverPriority(t *testing.T) {
	claudeDir := t.TempDir()
	projects := filepath.Join(claudeDir, "projects")
	cfg := config.NewProjectStore(filepath.Join(claudeDir, config.FileName))
	r := NewResolver(projects, cfg)

	if got := r.Resolve("-srv-my-app"); got != "/srv/my/app" {
		t.Fatalf("expected decoded fallback, got %q", got)
	}

	writeLines(t, filepath.Join(projects, "-srv-my-app", metadataFileName), `{"cwd":"/srv/my-app"}`)
	if got := r.Resolve("-srv-my-app"); got != "/srv/my-app" {
		t.Fatalf("expected metadata cwd, got %q", got)
	}
	writeLines(t, filepath.Join(projects, "-srv-my-app", metadataFileName), `{"path":"/srv/real","cwd":"/srv/my-app"}`)
	if got := r.Resolve("-srv-my-app"); got != "/srv/real" {
		t.Fatalf("expected metadata path, got %q", got)
	}

	if err := cfg.Save(config.Config{"-srv-my-app": {OriginalPath: "/moved/here"}}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if got := r.Resolve("-srv-my-app"); got != "/moved/here" {
		t.Fatalf("expected config originalPath, got %q", got)
	}

	writeLines(t, filepath.Join(projects, "-broken", metadataFileName), `{not json`)
	if got := r.Resolve("-broken"); got != "/broken" {
		t.Fatalf("expected fallback for unparsable metadata, got %q", got)
	}
}

func TestDeriveDisplayName(t *testing.T) {
	dir := t.TempDir()

	pkg := filepath.Join(dir, "node")
	writeLines(t, filepath.Join(pkg, "package.json"), `{"name":"my-web-app"}`)
	if got := deriveDisplayName(pkg); got != "my-web-app" {
		t.Fatalf("expected package name, got %q", got)
	}

	gomod := filepath.Join(dir, "gomod")
	writeLines(t, filepath.Join(gomod, "go.mod"), "module github.com/acme/tool", "", "go 1.24")
	if got := deriveDisplayName(gomod); got != "tool" {
		t.Fatalf("expected module base name, got %q", got)
	}

	if got := shortPath("/home/user/projects/app"); got != ".../projects/app" {
		t.Fatalf("unexpected short path %q", got)
	}
	if got := shortPath("/home/user/app"); got != "/home/user/app" {
		t.Fatalf("unexpected short path %q", got)
	}
	if got := shortPath("relative/path/that/is/long"); got != "relative/path/that/is/long" {
		t.Fatalf("unexpected short path %q", got)
	}
	if got := deriveDisplayName("/a/b"); got != "/a/b" {
		t.Fatalf("unexpected name for missing dir %q", got)
	}
}
