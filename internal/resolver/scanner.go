package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultInclude are the declaration file globs scanned when none are given.
var DefaultInclude = []string{"*.dagger.yaml", "*.dagger.yml", "*.dagger.toml"}

// ScanOptions selects declaration files.
type ScanOptions struct {
	Include []string // base-name globs
	Exclude []string // path prefixes relative to a scan root
}

// Scanner discovers and decodes declaration files.
type Scanner struct {
	opts   ScanOptions
	logger *log.Logger
}

// NewScanner creates a scanner. A nil logger discards output.
func NewScanner(opts ScanOptions, logger *log.Logger) *Scanner {
	if len(opts.Include) == 0 {
		opts.Include = DefaultInclude
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scanner{opts: opts, logger: logger}
}

// Scan walks roots and decodes every matching file, ordered by path.
// Hidden directories, .gitignore'd paths and excluded prefixes are skipped.
func (s *Scanner) Scan(ctx context.Context, roots ...string) ([]*File, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, root := range roots {
		found, err := s.walk(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	slices.Sort(paths)

	files := make([]*File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read declarations: %w", err)
		}
		f, err := Decode(p, data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("declarations", "path", p, "package", f.Package, "types", len(f.Types))
		files = append(files, f)
	}
	return files, nil
}

func (s *Scanner) walk(ctx context.Context, root string) ([]string, error) {
	root = filepath.Clean(root)
	rules, err := loadGitignore(root)
	if err != nil {
		return nil, fmt.Errorf("load .gitignore: %w", err)
	}

	var found []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return err
		}
		if s.skip(rel, d, rules) {
			if d.IsDir() {
				s.logger.Debug("skip", "dir", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.included(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return found, nil
}

func (s *Scanner) skip(rel string, d fs.DirEntry, rules ignoreRules) bool {
	if d.IsDir() && strings.HasPrefix(d.Name(), ".") {
		return true
	}
	slashed := filepath.ToSlash(rel)
	for _, exc := range s.opts.Exclude {
		exc = strings.TrimSuffix(strings.TrimPrefix(filepath.ToSlash(exc), "./"), "/")
		if slashed == exc || strings.HasPrefix(slashed, exc+"/") {
			return true
		}
	}
	return rules.ignored(rel, d.IsDir())
}

func (s *Scanner) included(name string) bool {
	for _, glob := range s.opts.Include {
		if ok, _ := doublestar.Match(glob, name); ok {
			return true
		}
	}
	return false
}

// Decode parses a declaration file. The format follows the extension:
// .yaml and .yml are YAML, .toml is TOML. Unknown fields are rejected.
func Decode(path string, data []byte) (*File, error) {
	f := &File{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(f)
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(f)
	default:
		err = errors.New("unsupported format")
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	f.Path = path
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return f, nil
}
