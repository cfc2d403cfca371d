package claudehistory

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	transcriptSuffix         = ".jsonl"
	archivedTranscriptSuffix = ".jsonl.xz"
)

type transcriptFile struct {
	path    string
	modTime time.Time
}

func isTranscriptFileName(name string) bool {
	return strings.HasSuffix(name, transcriptSuffix) || strings.HasSuffix(name, archivedTranscriptSuffix)
}

// collectTranscriptFiles lists the transcript files directly inside dir,
// sorted by name.
func collectTranscriptFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isTranscriptFileName(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// newestFirst stats every file and orders them by modification time,
// most recent first. Ties keep name order.
func newestFirst(files []string) ([]transcriptFile, error) {
	out := make([]transcriptFile, 0, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		out = append(out, transcriptFile{path: path, modTime: info.ModTime()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].modTime.After(out[j].modTime)
	})
	return out, nil
}
