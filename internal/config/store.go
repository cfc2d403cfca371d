package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const FileName = "project-config.json"

// ProjectEntry holds the user overrides for one project.
type ProjectEntry struct {
	DisplayName   string `json:"displayName,omitempty"`
	ManuallyAdded bool   `json:"manuallyAdded,omitempty"`
	OriginalPath  string `json:"originalPath,omitempty"`
}

func (e ProjectEntry) IsZero() bool {
	return e.DisplayName == "" && !e.ManuallyAdded && e.OriginalPath == ""
}

// Config maps encoded project names to their overrides.
type Config map[string]ProjectEntry

// ProjectStore persists Config as a single JSON document. Writers are
// serialized in-process by mu and across processes by an advisory lock on
// <path>.lock; tools that edit the file without the lock still race.
type ProjectStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	log  *slog.Logger
}

func DefaultPath(claudeDir string) string {
	return filepath.Join(claudeDir, FileName)
}

func NewProjectStore(path string) *ProjectStore {
	return &ProjectStore{
		path: path,
		lock: flock.New(path + ".lock"),
		log:  logger.Component("config"),
	}
}

func (s *ProjectStore) Path() string { return s.path }

// Load returns the current document. A missing or unparsable file yields an
// empty Config; Load never fails the caller.
func (s *ProjectStore) Load() Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	if locked, err := s.lock.TryRLock(); err == nil && locked {
		defer func() { _ = s.lock.Unlock() }()
	}
	return s.loadUnlocked()
}

func (s *ProjectStore) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lockExclusive(); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.saveUnlocked(cfg)
}

// Update runs fn against a fresh copy of the document and writes the result.
// Nothing is written when fn returns an error.
func (s *ProjectStore) Update(fn func(Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lockExclusive(); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	cfg := s.loadUnlocked()
	if err := fn(cfg); err != nil {
		return err
	}
	return s.saveUnlocked(cfg)
}

func (s *ProjectStore) lockExclusive() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock project config: %w", err)
	}
	return nil
}

func (s *ProjectStore) loadUnlocked() Config {
	cfg := Config{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("read project config", "path", s.path, "err", err)
		}
		return cfg
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		s.log.Warn("parse project config", "path", s.path, "err", err)
		return Config{}
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg
}

func (s *ProjectStore) saveUnlocked(cfg Config) error {
	if cfg == nil {
		cfg = Config{}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	b = append(b, '\n')

	if err := AtomicWriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("atomic write project config: %w", err)
	}
	return nil
}
