// Package artifact persists generated sources.
package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"

	"github.com/azahnen/dagger-auto/internal/compiler"
)

// Extension is appended to artifact paths.
const Extension = ".java"

// Path maps a qualified artifact name to its file below root.
//
//	Path("out", "com.acme.AutoBindings") → "out/com/acme/AutoBindings.java"
func Path(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))+Extension)
}

// Report counts the outcome of one Persist call.
type Report struct {
	Written   int
	Unchanged int
}

// Session writes artifacts below one output root. It lives for a whole
// generator run and keeps one handle per artifact name across calls.
type Session struct {
	root   string
	jobs   int
	logger *log.Logger

	mu      sync.Mutex
	handles map[string]*handle
}

// Option configures a Session.
type Option func(*Session)

// WithJobs bounds the number of concurrent writes.
func WithJobs(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.jobs = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSession(root string, opts ...Option) *Session {
	s := &Session{
		root:    root,
		jobs:    4,
		logger:  log.New(io.Discard),
		handles: make(map[string]*handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handles reports how many distinct artifacts the session has seen.
func (s *Session) Handles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// handle returns the handle for name, creating it on first use.
func (s *Session) handle(name string) *handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[name]
	if !ok {
		h = &handle{name: name, path: Path(s.root, name)}
		s.handles[name] = h
	}
	return h
}

// Persist writes every artifact whose content differs from what the session
// last wrote or what is already on disk.
func (s *Session) Persist(ctx context.Context, artifacts compiler.Artifacts) (Report, error) {
	var (
		mu     sync.Mutex
		report Report
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)
	for _, name := range artifacts.Names() {
		h := s.handle(name)
		content := artifacts[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			written, err := h.write(content)
			if err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if written {
				report.Written++
				s.logger.Info("wrote", "artifact", name, "path", h.path)
			} else {
				report.Unchanged++
				s.logger.Debug("unchanged", "artifact", name)
			}
			return nil
		})
	}
	err := g.Wait()
	return report, err
}

type handle struct {
	name string
	path string

	mu     sync.Mutex
	sum    [sha256.Size]byte
	synced bool // sum matches the file on disk
}

// write stores content unless it is already in place.
func (h *handle) write(content string) (bool, error) {
	sum := sha256.Sum256([]byte(content))

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.synced && h.sum == sum {
		return false, nil
	}
	if !h.synced {
		existing, err := os.ReadFile(h.path)
		switch {
		case err == nil && bytes.Equal(existing, []byte(content)):
			h.sum, h.synced = sum, true
			return false, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return false, err
		}
	}
	if err := writeAtomic(h.path, []byte(content)); err != nil {
		h.synced = false
		return false, err
	}
	h.sum, h.synced = sum, true
	return true, nil
}

// writeAtomic replaces path with data through a temporary file in the same
// directory.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Archive renders artifacts as a txtar archive, one file per artifact in
// name order, named by their output path relative to the output root.
func Archive(artifacts compiler.Artifacts) []byte {
	ar := &txtar.Archive{}
	for _, name := range artifacts.Names() {
		ar.Files = append(ar.Files, txtar.File{
			Name: filepath.ToSlash(Path("", name)),
			Data: []byte(artifacts[name]),
		})
	}
	return txtar.Format(ar)
}
