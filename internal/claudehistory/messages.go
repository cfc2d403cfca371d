package claudehistory

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

type rawRecord struct {
	raw json.RawMessage
	ts  time.Time
}

// Messages returns every raw record of a session across all of the project's
// transcript files, oldest first. Records without a timestamp sort as the zero
// time; ties keep file then line order. Read failures yield an empty list.
func (s *Store) Messages(ctx context.Context, name, sessionID string) []json.RawMessage {
	records, err := s.messages(ctx, name, sessionID)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("read session messages", "project", name, "session", sessionID, "err", err)
		}
		return []json.RawMessage{}
	}
	return records
}

func (s *Store) messages(ctx context.Context, name, sessionID string) ([]json.RawMessage, error) {
	if !validProjectName(name) {
		return nil, newError("read messages", KindInvalidArgument, "invalid project name %q", name)
	}
	files, err := collectTranscriptFiles(filepath.Join(s.projectsDir, name))
	if err != nil {
		return nil, err
	}

	var found []rawRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matched, err := s.sessionRecords(path, sessionID)
		if err != nil {
			return nil, err
		}
		found = append(found, matched...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ts.Before(found[j].ts)
	})
	out := make([]json.RawMessage, 0, len(found))
	for _, rec := range found {
		out = append(out, rec.raw)
	}
	return out, nil
}

func (s *Store) sessionRecords(path, sessionID string) ([]rawRecord, error) {
	rc, err := openTranscript(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []rawRecord
	err = scanLines(rc, func(lineNo int, line []byte) {
		rec, err := DecodeRecord(line)
		if err != nil {
			s.log.Warn("skip malformed transcript line", "file", path, "line", lineNo, "err", err)
			return
		}
		if rec.SessionID != sessionID {
			return
		}
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		out = append(out, rawRecord{raw: raw, ts: parseTime(rec.Timestamp)})
	})
	return out, err
}
