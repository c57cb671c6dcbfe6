package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(`
# build output
build/
*.tmp.dagger.yaml
!keep.tmp.dagger.yaml
/gen/*.dagger.yaml
docs/**/draft.dagger.yaml
`), 0o644))

	rules, err := loadGitignore(dir)
	require.NoError(t, err)
	require.Len(t, rules, 5)

	tests := []struct {
		path string
		dir  bool
		want bool
	}{
		{"build", true, true},
		{"build", false, false},
		{"api/build", true, true},
		{"a.tmp.dagger.yaml", false, true},
		{"api/b.tmp.dagger.yaml", false, true},
		{"api/keep.tmp.dagger.yaml", false, false},
		{"gen/x.dagger.yaml", false, true},
		{"api/gen/x.dagger.yaml", false, false},
		{"api/api.dagger.yaml", false, false},
		{"docs/draft.dagger.yaml", false, true},
		{"docs/v1/beta/draft.dagger.yaml", false, true},
		{"api/docs/draft.dagger.yaml", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rules.ignored(tt.path, tt.dir), tt.path)
	}
}

func TestGitignoreMissing(t *testing.T) {
	t.Parallel()

	rules, err := loadGitignore(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.False(t, rules.ignored("anything", false))
}
