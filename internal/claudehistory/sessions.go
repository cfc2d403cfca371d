package claudehistory

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const DefaultPageSize = 5

// Indexer builds paginated session lists for one project directory at a time.
// Nothing is cached between calls.
type Indexer struct {
	projectsDir string
	parser      *Parser
	log         *slog.Logger
}

func NewIndexer(projectsDir string, parser *Parser) *Indexer {
	if parser == nil {
		parser = NewParser()
	}
	return &Indexer{projectsDir: projectsDir, parser: parser, log: logger.Component("indexer")}
}

// List returns one page of the project's sessions, newest activity first.
// Any read failure yields an empty page, so an empty result does not prove
// the project has no sessions.
func (x *Indexer) List(ctx context.Context, project string, limit, offset int) SessionPage {
	page, err := x.list(ctx, project, limit, offset)
	if err != nil {
		x.log.Warn("list sessions", "project", project, "err", err)
		limit, offset = normalizeWindow(limit, offset)
		return emptyPage(limit, offset)
	}
	return page
}

func normalizeWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (x *Indexer) list(ctx context.Context, project string, limit, offset int) (SessionPage, error) {
	limit, offset = normalizeWindow(limit, offset)
	if !validProjectName(project) {
		return SessionPage{}, newError("list sessions", KindInvalidArgument, "invalid project name %q", project)
	}

	names, err := collectTranscriptFiles(filepath.Join(x.projectsDir, project))
	if err != nil {
		return SessionPage{}, err
	}
	if len(names) == 0 {
		return emptyPage(limit, offset), nil
	}
	files, err := newestFirst(names)
	if err != nil {
		return SessionPage{}, err
	}

	want := 2 * (limit + offset)
	minFiles := min(3, len(files))
	merged := NewSessionSet()
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return SessionPage{}, err
		}
		set, err := x.parser.ParseFile(file.path)
		if err != nil {
			return SessionPage{}, err
		}
		merged.Merge(set)
		if merged.Len() >= want && i+1 >= minFiles {
			break
		}
	}

	all := merged.Values()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastActivity.After(all[j].LastActivity)
	})

	total := len(all)
	start := min(offset, total)
	end := min(offset+limit, total)
	sessions := make([]Session, end-start)
	copy(sessions, all[start:end])

	return SessionPage{
		Sessions: sessions,
		HasMore:  offset+limit < total,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	}, nil
}
