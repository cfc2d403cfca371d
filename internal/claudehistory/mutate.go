package claudehistory

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/baaaaaaaka/claude_sessions/internal/config"
)

// Rename sets a project's display name. A blank name clears the override and
// leaves the rest of the project's config entry alone.
func (s *Store) Rename(name, displayName string) error {
	const op = "rename project"
	if !validProjectName(name) {
		return newError(op, KindInvalidArgument, "invalid project name %q", name)
	}
	err := s.config.Update(func(cfg config.Config) error {
		if strings.TrimSpace(displayName) == "" {
			cfg.ClearDisplayName(name)
			return nil
		}
		cfg.SetDisplayName(name, displayName)
		return nil
	})
	if err != nil {
		return wrapError(op, KindIO, err)
	}
	return nil
}

// DeleteSession removes every record of sessionID from the first transcript
// file (in name order) that contains it. The file is replaced atomically.
func (s *Store) DeleteSession(ctx context.Context, name, sessionID string) error {
	const op = "delete session"
	if !validProjectName(name) {
		return newError(op, KindInvalidArgument, "invalid project name %q", name)
	}
	if strings.TrimSpace(sessionID) == "" {
		return newError(op, KindInvalidArgument, "session id is required")
	}

	files, err := collectTranscriptFiles(filepath.Join(s.projectsDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(op, KindNotFound, "project %s not found", name)
		}
		return wrapError(op, KindIO, err)
	}
	if len(files) == 0 {
		return newError(op, KindNotFound, "no session files found for project %s", name)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines, err := readTranscriptLines(path)
		if err != nil {
			return wrapError(op, KindIO, err)
		}
		kept, found := withoutSession(lines, sessionID)
		if !found {
			continue
		}
		if err := rewriteTranscript(path, kept); err != nil {
			return wrapError(op, KindIO, err)
		}
		s.log.Info("deleted session", "project", name, "session", sessionID, "file", path)
		return nil
	}
	return newError(op, KindNotFound, "session %s not found in any files", sessionID)
}

// IsEmpty reports whether the project has no sessions. An index failure counts
// as not empty so that callers never delete a project they could not read.
func (s *Store) IsEmpty(ctx context.Context, name string) bool {
	page, err := s.indexer.list(ctx, name, 1, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true
		}
		s.log.Warn("check project empty", "project", name, "err", err)
		return false
	}
	return page.Total == 0
}

// DeleteProject removes an empty project's log directory and config entry.
func (s *Store) DeleteProject(ctx context.Context, name string) error {
	const op = "delete project"
	if !validProjectName(name) {
		return newError(op, KindInvalidArgument, "invalid project name %q", name)
	}
	dir := filepath.Join(s.projectsDir, name)
	_, configured := s.config.Load()[name]
	if !isDir(dir) && !configured {
		return newError(op, KindNotFound, "project %s not found", name)
	}
	if !s.IsEmpty(ctx, name) {
		return newError(op, KindConflict, "cannot delete project %s with existing sessions", name)
	}

	var removed config.ProjectEntry
	var hadEntry bool
	err := s.config.Update(func(cfg config.Config) error {
		removed, hadEntry = cfg[name]
		cfg.Remove(name)
		return nil
	})
	if err != nil {
		return wrapError(op, KindIO, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		if hadEntry {
			restoreErr := s.config.Update(func(cfg config.Config) error {
				cfg[name] = removed
				return nil
			})
			if restoreErr != nil {
				s.log.Error("restore config entry", "project", name, "err", restoreErr)
			}
		}
		return wrapError(op, KindIO, err)
	}
	s.log.Info("deleted project", "project", name)
	return nil
}

// AddManually registers a working directory that has no log directory yet.
// Absolute paths must already be directories; relative paths are created
// under the home directory.
func (s *Store) AddManually(path, displayName string) (Project, error) {
	const op = "add project"
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Project{}, newError(op, KindInvalidArgument, "path is required")
	}
	expanded := expandHome(trimmed, s.homeDir)

	absPath := filepath.Clean(expanded)
	create := false
	if filepath.IsAbs(expanded) {
		info, err := os.Stat(absPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Project{}, newError(op, KindNotFound, "path does not exist: %s", absPath)
			}
			return Project{}, wrapError(op, KindIO, err)
		}
		if !info.IsDir() {
			return Project{}, newError(op, KindInvalidArgument, "path exists but is not a directory: %s", absPath)
		}
	} else {
		absPath = filepath.Join(s.homeDir, expanded)
		if _, err := os.Stat(absPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Project{}, wrapError(op, KindIO, err)
			}
			create = true
		}
	}

	name := EncodeProjectName(absPath)
	if _, err := os.Stat(filepath.Join(s.projectsDir, name)); err == nil {
		return Project{}, newError(op, KindConflict, "project already exists for path: %s", absPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Project{}, wrapError(op, KindIO, err)
	}
	if _, ok := s.config.Load()[name]; ok {
		return Project{}, newError(op, KindConflict, "project already configured for path: %s", absPath)
	}

	if create {
		s.log.Info("creating project directory", "path", absPath)
		if err := os.MkdirAll(absPath, 0o755); err != nil {
			return Project{}, wrapError(op, KindIO, err)
		}
	}
	err := s.config.Update(func(cfg config.Config) error {
		if _, ok := cfg[name]; ok {
			return newError(op, KindConflict, "project already configured for path: %s", absPath)
		}
		cfg.AddManual(name, absPath, displayName)
		return nil
	})
	if err != nil {
		if create {
			_ = os.Remove(absPath)
		}
		if KindOf(err) != KindUnknown {
			return Project{}, err
		}
		return Project{}, wrapError(op, KindIO, err)
	}

	entry := config.ProjectEntry{DisplayName: strings.TrimSpace(displayName)}
	return Project{
		Name:            name,
		DisplayName:     displayNameFor(entry, absPath),
		ResolvedPath:    absPath,
		IsCustomName:    entry.DisplayName != "",
		IsManuallyAdded: true,
		Sessions:        []Session{},
	}, nil
}

// readTranscriptLines returns the non-blank lines of a transcript file with
// their original bytes.
func readTranscriptLines(path string) ([][]byte, error) {
	rc, err := openTranscript(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// withoutSession drops the records of sessionID. Lines that are not valid JSON
// are kept.
func withoutSession(lines [][]byte, sessionID string) ([][]byte, bool) {
	kept := make([][]byte, 0, len(lines))
	found := false
	for _, line := range lines {
		if rec, err := DecodeRecord(line); err == nil && rec.SessionID == sessionID {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	return kept, found
}

func rewriteTranscript(path string, lines [][]byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	data := buf.Bytes()
	if strings.HasSuffix(path, xzSuffix) {
		data, err = compressXZ(data)
		if err != nil {
			return err
		}
	}
	return config.AtomicWriteFile(path, data, info.Mode().Perm())
}

func compressXZ(data []byte) ([]byte, error) {
	var out bytes.Buffer
	bw := bufio.NewWriter(&out)
	w, err := xz.NewWriter(bw)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
