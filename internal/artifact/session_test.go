package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/azahnen/dagger-auto/internal/compiler"
)

func TestPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("out", "com", "acme", "AutoBindings.java"), Path("out", "com.acme.AutoBindings"))
	assert.Equal(t, "Root.java", Path("", "Root"))
}

func TestPersist(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s := NewSession(root, WithJobs(2))
	ctx := context.Background()

	artifacts := compiler.Artifacts{
		"com.acme.AutoBindings":     "module\n",
		"com.acme.web.WebBindings":  "web\n",
		"com.acme.web.WebComponent": "component\n",
	}
	report, err := s.Persist(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, Report{Written: 3}, report)

	data, err := os.ReadFile(filepath.Join(root, "com", "acme", "web", "WebBindings.java"))
	require.NoError(t, err)
	assert.Equal(t, "web\n", string(data))

	report, err = s.Persist(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, Report{Unchanged: 3}, report, "unchanged content is not rewritten")

	artifacts["com.acme.AutoBindings"] = "module v2\n"
	report, err = s.Persist(ctx, artifacts)
	require.NoError(t, err)
	assert.Equal(t, Report{Written: 1, Unchanged: 2}, report)
	assert.Equal(t, 3, s.Handles(), "handles are reused across calls")

	entries, err := os.ReadDir(filepath.Join(root, "com", "acme"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"AutoBindings.java", "web"}, names, "no temporary files are left behind")
}

func TestPersistSkipsMatchingFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := Path(root, "com.acme.AutoBindings")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("module\n"), 0o644))

	report, err := NewSession(root).Persist(context.Background(), compiler.Artifacts{"com.acme.AutoBindings": "module\n"})
	require.NoError(t, err)
	assert.Equal(t, Report{Unchanged: 1}, report)
}

func TestPersistCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSession(t.TempDir()).Persist(ctx, compiler.Artifacts{"com.acme.AutoBindings": "module\n"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestArchive(t *testing.T) {
	t.Parallel()

	ar := txtar.Parse(Archive(compiler.Artifacts{
		"com.acme.web.WebBindings": "web\n",
		"com.acme.AutoBindings":    "module\n",
	}))
	require.Len(t, ar.Files, 2)
	assert.Equal(t, "com/acme/AutoBindings.java", ar.Files[0].Name)
	assert.Equal(t, "module\n", string(ar.Files[0].Data))
	assert.Equal(t, "com/acme/web/WebBindings.java", ar.Files[1].Name)
	assert.Equal(t, "web\n", string(ar.Files[1].Data))
}
