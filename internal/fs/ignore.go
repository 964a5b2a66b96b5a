package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is read from the root of a managed tree. It is never
// backed up itself.
const IgnoreFileName = ".sfmignore"

type ruleKind int

const (
	// baseRule globs the file name in any folder ("*.tmp").
	baseRule ruleKind = iota
	// pathRule globs the slash-separated path from the root ("Work/*.bak").
	pathRule
	// dirRule prunes whole folders ("node_modules/", "Work/cache/").
	dirRule
)

type ignoreRule struct {
	glob string
	kind ruleKind
}

// IgnoreMatcher decides which files a backup pass leaves out. Lines are
// globs in filepath.Match syntax; blank lines and '#' comments are dropped.
// A trailing '/' makes the line a folder rule, and any other '/' anchors it
// to the tree root.
type IgnoreMatcher struct {
	rules []ignoreRule
}

// NewIgnoreMatcher parses raw ignore lines. Malformed globs never match.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r := ignoreRule{glob: line, kind: baseRule}
		switch {
		case strings.HasSuffix(line, "/"):
			r = ignoreRule{glob: strings.TrimRight(line, "/"), kind: dirRule}
		case strings.Contains(line, "/"):
			r.kind = pathRule
		}
		if r.glob == "" {
			continue
		}
		if _, err := path.Match(r.glob, ""); err != nil {
			continue
		}
		m.rules = append(m.rules, r)
	}
	return m
}

// Len returns the number of usable rules.
func (m *IgnoreMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Match reports whether the file at rel (relative to the tree root) is
// excluded, either by a file rule or because a folder above it is pruned.
func (m *IgnoreMatcher) Match(rel string) bool {
	if m.Len() == 0 || rel == "" {
		return false
	}
	slashed := filepath.ToSlash(rel)
	for dir := path.Dir(slashed); dir != "."; dir = path.Dir(dir) {
		if m.MatchDir(dir) {
			return true
		}
	}
	for _, r := range m.rules {
		switch r.kind {
		case baseRule:
			if ok, _ := path.Match(r.glob, path.Base(slashed)); ok {
				return true
			}
		case pathRule:
			if ok, _ := path.Match(r.glob, slashed); ok {
				return true
			}
		}
	}
	return false
}

// MatchDir reports whether the folder at rel is pruned. A folder rule
// without an inner '/' matches the folder name at any depth.
func (m *IgnoreMatcher) MatchDir(rel string) bool {
	if m.Len() == 0 || rel == "" {
		return false
	}
	slashed := filepath.ToSlash(rel)
	for _, r := range m.rules {
		if r.kind != dirRule {
			continue
		}
		subject := slashed
		if !strings.Contains(r.glob, "/") {
			subject = path.Base(slashed)
		}
		if ok, _ := path.Match(r.glob, subject); ok {
			return true
		}
	}
	return false
}

// LoadIgnoreMatcher combines the ignore file itself, extra lines (from
// config) and the contents of dir's .sfmignore.
func LoadIgnoreMatcher(dir string, extra []string) (*IgnoreMatcher, error) {
	fromFile, err := ReadIgnoreFile(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, 1+len(extra)+len(fromFile))
	lines = append(lines, IgnoreFileName)
	lines = append(lines, extra...)
	lines = append(lines, fromFile...)
	return NewIgnoreMatcher(lines), nil
}

// ReadIgnoreFile returns the raw lines of an ignore file, or nil when it
// does not exist.
func ReadIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", name, err)
	}
	return lines, nil
}
