package claudehistory

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const (
	summaryMaxRunes = 50
	commandMarker   = "<command-name>"
	xzSuffix        = ".xz"
)

// Record is the subset of a transcript line the parser looks at. Only
// sessionId must have its expected type; other fields holding a different
// JSON type are left empty and the record still counts.
type Record struct {
	SessionID string
	Type      string
	Summary   string
	Role      string
	Content   json.RawMessage
	Timestamp string
	Cwd       string
}

type recordFields struct {
	SessionID string          `json:"sessionId"`
	Type      json.RawMessage `json:"type"`
	Summary   json.RawMessage `json:"summary"`
	Message   json.RawMessage `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
	Cwd       json.RawMessage `json:"cwd"`
}

type recordMessage struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"`
}

// DecodeRecord fails only when line is not a JSON object or sessionId is
// present but not a string.
func DecodeRecord(line []byte) (Record, error) {
	var f recordFields
	if err := json.Unmarshal(line, &f); err != nil {
		return Record{}, err
	}
	rec := Record{
		SessionID: f.SessionID,
		Type:      rawString(f.Type),
		Summary:   rawString(f.Summary),
		Timestamp: rawString(f.Timestamp),
		Cwd:       rawString(f.Cwd),
	}
	var msg recordMessage
	if len(f.Message) > 0 && json.Unmarshal(f.Message, &msg) == nil {
		rec.Role = rawString(msg.Role)
		rec.Content = msg.Content
	}
	return rec, nil
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (r Record) isSummary() bool {
	return r.Type == "summary" && r.Summary != ""
}

// userText returns the message content when the record is a user message
// whose content is a plain string.
func (r Record) userText() (string, bool) {
	if r.Role != "user" || len(r.Content) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

// SessionSet is an ordered mapping of session id to Session. The first value
// stored for an id wins; iteration follows first-insertion order.
type SessionSet struct {
	order []string
	byID  map[string]*Session
}

func NewSessionSet() *SessionSet {
	return &SessionSet{byID: map[string]*Session{}}
}

func (s *SessionSet) Len() int { return len(s.order) }

func (s *SessionSet) Get(id string) (Session, bool) {
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Add stores sess unless its id is already present and reports whether it did.
func (s *SessionSet) Add(sess Session) bool {
	if _, ok := s.byID[sess.ID]; ok {
		return false
	}
	copied := sess
	s.byID[sess.ID] = &copied
	s.order = append(s.order, sess.ID)
	return true
}

// Merge adds every session of other that is not already present.
func (s *SessionSet) Merge(other *SessionSet) {
	if other == nil {
		return
	}
	for _, id := range other.order {
		s.Add(*other.byID[id])
	}
}

func (s *SessionSet) Values() []Session {
	out := make([]Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *SessionSet) draft(id string) *Session {
	return s.byID[id]
}

// Parser folds transcript files into session summaries.
type Parser struct {
	Now func() time.Time
	Log *slog.Logger
}

func NewParser() *Parser {
	return &Parser{Now: time.Now, Log: logger.Component("parser")}
}

func (p *Parser) now() time.Time {
	if p == nil || p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Parser) log() *slog.Logger {
	if p == nil || p.Log == nil {
		return logger.Discard()
	}
	return p.Log
}

func (p *Parser) ParseFile(path string) (*SessionSet, error) {
	rc, err := openTranscript(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return p.parse(rc, path)
}

func (p *Parser) ParseReader(r io.Reader) (*SessionSet, error) {
	return p.parse(r, "")
}

func (p *Parser) parse(r io.Reader, source string) (*SessionSet, error) {
	set := NewSessionSet()
	err := scanLines(r, func(lineNo int, line []byte) {
		rec, err := DecodeRecord(line)
		if err != nil {
			p.log().Warn("skip malformed transcript line", "file", source, "line", lineNo, "err", err)
			return
		}
		p.apply(set, rec)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (p *Parser) apply(set *SessionSet, rec Record) {
	if rec.SessionID == "" {
		return
	}
	draft := set.draft(rec.SessionID)
	if draft == nil {
		set.Add(Session{
			ID:           rec.SessionID,
			Summary:      DefaultSessionSummary,
			LastActivity: p.now(),
			Cwd:          rec.Cwd,
		})
		draft = set.draft(rec.SessionID)
	}

	if rec.isSummary() {
		draft.Summary = rec.Summary
	} else if draft.Summary == DefaultSessionSummary {
		if text, ok := rec.userText(); ok && text != "" && !strings.HasPrefix(text, commandMarker) {
			draft.Summary = truncateSummary(text)
		}
	}

	draft.MessageCount++

	if rec.Timestamp != "" {
		if ts := parseTime(rec.Timestamp); !ts.IsZero() {
			draft.LastActivity = ts
		}
	}
}

func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryMaxRunes {
		return s
	}
	return string(runes[:summaryMaxRunes]) + "..."
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

// scanLines calls fn for every non-blank line. Lines are not length limited.
func scanLines(r io.Reader, fn func(lineNo int, line []byte)) error {
	reader := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				fn(lineNo, trimmed)
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

type transcriptReader struct {
	io.Reader
	f *os.File
}

func (t transcriptReader) Close() error { return t.f.Close() }

// openTranscript opens a .jsonl file, or a rotated .jsonl.xz archive.
func openTranscript(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, xzSuffix) {
		return f, nil
	}
	zr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return transcriptReader{Reader: zr, f: f}, nil
}
