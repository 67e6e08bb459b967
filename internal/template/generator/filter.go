package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tacogips/forge/internal/template/model"
)

// DoNotCopySet is the set of template-relative paths excluded from
// materialization. Entries are exact slash-separated paths or doublestar globs.
type DoNotCopySet struct {
	entries []string
	seen    map[string]struct{}
}

// NewDoNotCopySet creates a set holding entries.
func NewDoNotCopySet(entries ...string) *DoNotCopySet {
	s := &DoNotCopySet{seen: make(map[string]struct{})}
	s.Add(entries...)
	return s
}

// Add appends entries, ignoring duplicates and blanks.
func (s *DoNotCopySet) Add(entries ...string) {
	for _, e := range entries {
		e = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(e)), "./")
		if e == "" {
			continue
		}
		if _, ok := s.seen[e]; ok {
			continue
		}
		s.seen[e] = struct{}{}
		s.entries = append(s.entries, e)
	}
}

// Entries returns the entries in insertion order.
func (s *DoNotCopySet) Entries() []string {
	return append([]string(nil), s.entries...)
}

// Len returns the number of entries.
func (s *DoNotCopySet) Len() int {
	return len(s.entries)
}

// Matches reports whether rel is excluded. Invalid glob patterns only match
// exactly.
func (s *DoNotCopySet) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if _, ok := s.seen[rel]; ok {
		return true
	}
	for _, pattern := range s.entries {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// isSkippedDir reports whether a directory name is never listed.
func isSkippedDir(name string) bool {
	for _, d := range model.SkippedDirs() {
		if name == d {
			return true
		}
	}
	return false
}

// ListTemplateFiles recursively lists the files of a template directory,
// skipping VCS and dependency directories, OS and registry litter such as
// .DS_Store and .npmrc, and the configuration file at the template root. Results are sorted by path.
func ListTemplateFiles(root string) ([]model.TemplateFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template root: %w", err)
	}

	var files []model.TemplateFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && isSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)
		if model.IsConfigFile(rel) || model.IsIgnoredFile(rel) {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		if info.IsDir() {
			// Symlinked directories are not followed.
			return nil
		}

		files = append(files, model.TemplateFile{
			Path:    rel,
			AbsPath: path,
			Mode:    info.Mode().Perm(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
