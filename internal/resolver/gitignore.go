package resolver

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is a single .gitignore pattern.
type ignoreRule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool // contains a slash: matched from the root
}

// ignoreRules is the ordered rule list of one .gitignore; the last matching
// rule wins.
type ignoreRules []ignoreRule

// loadGitignore parses root/.gitignore. A missing file yields no rules.
func loadGitignore(root string) (ignoreRules, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules ignoreRules
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var r ignoreRule
		if strings.HasPrefix(line, "!") {
			r.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			r.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		r.anchored = strings.Contains(line, "/")
		r.pattern = strings.TrimPrefix(line, "/")
		rules = append(rules, r)
	}
	return rules, sc.Err()
}

// ignored reports whether the slash-separated path rel, relative to the
// directory holding the .gitignore, is ignored.
func (rs ignoreRules) ignored(rel string, dir bool) bool {
	rel = filepath.ToSlash(rel)
	ignored := false
	for _, r := range rs {
		if r.dirOnly && !dir {
			continue
		}
		if r.match(rel) {
			ignored = !r.negate
		}
	}
	return ignored
}

// match tests a slash-separated path. Anchored patterns may use "**" to span
// directories.
func (r ignoreRule) match(rel string) bool {
	if r.anchored {
		ok, _ := doublestar.Match(r.pattern, rel)
		return ok
	}
	ok, _ := doublestar.Match(r.pattern, path.Base(rel))
	return ok
}
