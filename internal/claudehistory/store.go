package claudehistory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baaaaaaaka/claude_sessions/internal/config"
	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

type Options struct {
	// ClaudeDir is the Claude data directory holding projects/ and the
	// project config. Required.
	ClaudeDir string
	// ConfigPath overrides <ClaudeDir>/project-config.json.
	ConfigPath string
	// HomeDir anchors "~" and relative paths in AddManually. Defaults to
	// the user's home directory.
	HomeDir string
	// Now stamps sessions whose records carry no timestamp.
	Now func() time.Time
	// Concurrency bounds the per-project session fetches in ListProjects.
	Concurrency int
}

// Store is the project and session index over a Claude data directory.
type Store struct {
	claudeDir   string
	projectsDir string
	homeDir     string
	concurrency int

	config   *config.ProjectStore
	resolver *Resolver
	parser   *Parser
	indexer  *Indexer
	log      *slog.Logger
}

func NewStore(opts Options) (*Store, error) {
	if opts.ClaudeDir == "" {
		return nil, newError("open store", KindInvalidArgument, "claude dir is required")
	}
	home := opts.HomeDir
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, wrapError("open store", KindIO, err)
		}
		home = h
	}
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath(opts.ClaudeDir)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	parser := NewParser()
	if opts.Now != nil {
		parser.Now = opts.Now
	}
	projectsDir := filepath.Join(opts.ClaudeDir, projectsDirName)
	cfg := config.NewProjectStore(cfgPath)

	return &Store{
		claudeDir:   opts.ClaudeDir,
		projectsDir: projectsDir,
		homeDir:     home,
		concurrency: concurrency,
		config:      cfg,
		resolver:    NewResolver(projectsDir, cfg),
		parser:      parser,
		indexer:     NewIndexer(projectsDir, parser),
		log:         logger.Component("store"),
	}, nil
}

func (s *Store) ClaudeDir() string   { return s.claudeDir }
func (s *Store) ProjectsDir() string { return s.projectsDir }
func (s *Store) Config() *config.ProjectStore {
	return s.config
}

// Resolve returns the working directory a project stands for.
func (s *Store) Resolve(name string) string {
	return s.resolver.Resolve(name)
}

// Sessions returns one page of a project's sessions.
func (s *Store) Sessions(ctx context.Context, name string, limit, offset int) SessionPage {
	return s.indexer.List(ctx, name, limit, offset)
}

// ListProjects returns every project directory, each with its first page of
// sessions, followed by manually added projects that have no directory yet.
// Failures degrade per project and never fail the listing.
func (s *Store) ListProjects(ctx context.Context) []Project {
	if err := os.MkdirAll(s.projectsDir, 0o755); err != nil {
		s.log.Error("create projects dir", "path", s.projectsDir, "err", err)
	}
	cfg := s.config.Load()

	var dirs []string
	entries, err := os.ReadDir(s.projectsDir)
	if err != nil {
		s.log.Error("read projects dir", "path", s.projectsDir, "err", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}

	projects := make([]Project, len(dirs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, name := range dirs {
		i, name := i, name
		g.Go(func() error {
			projects[i] = s.discoveredProject(ctx, cfg, name)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{}, len(dirs))
	for _, name := range dirs {
		seen[name] = struct{}{}
	}
	for _, name := range cfg.ManualEntries() {
		if _, ok := seen[name]; ok {
			continue
		}
		projects = append(projects, s.manualProject(cfg, name))
	}
	return projects
}

func (s *Store) discoveredProject(ctx context.Context, cfg config.Config, name string) Project {
	physical := filepath.Join(s.projectsDir, name)
	resolved := s.resolver.resolveWith(cfg, name)
	entry := cfg[name]

	page := s.indexer.List(ctx, name, DefaultPageSize, 0)
	return Project{
		Name:            name,
		PhysicalPath:    &physical,
		DisplayName:     displayNameFor(entry, resolved),
		ResolvedPath:    resolved,
		IsCustomName:    entry.DisplayName != "",
		IsManuallyAdded: entry.ManuallyAdded,
		Sessions:        page.Sessions,
		SessionMeta:     SessionMeta{HasMore: page.HasMore, Total: page.Total},
	}
}

func (s *Store) manualProject(cfg config.Config, name string) Project {
	resolved := s.resolver.resolveWith(cfg, name)
	entry := cfg[name]
	return Project{
		Name:            name,
		DisplayName:     displayNameFor(entry, resolved),
		ResolvedPath:    resolved,
		IsCustomName:    entry.DisplayName != "",
		IsManuallyAdded: true,
		Sessions:        []Session{},
	}
}

func displayNameFor(entry config.ProjectEntry, resolved string) string {
	if entry.DisplayName != "" {
		return entry.DisplayName
	}
	if name := deriveDisplayName(resolved); name != "" {
		return name
	}
	return resolved
}
