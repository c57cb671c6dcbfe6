package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azahnen/dagger-auto/internal/binding"
)

func TestDecodeFormats(t *testing.T) {
	t.Parallel()

	yamlFile := decode(t, "x.dagger.yaml", `
package: com.acme
types:
  - name: Plugin
    kind: interface
    multiBind:
      kind: CLASS_MAP
      lazy: false
`)
	tomlFile := decode(t, "x.dagger.toml", `
package = "com.acme"

[[types]]
name = "Plugin"
kind = "interface"

[types.multiBind]
kind = "CLASS_MAP"
lazy = false
`)

	for _, f := range []*File{yamlFile, tomlFile} {
		require.Len(t, f.Types, 1)
		typ := f.Types[0]
		assert.Equal(t, "com.acme.Plugin", typ.Name, "names are qualified with the package")
		assert.Equal(t, KindInterface, typ.Kind)
		require.NotNil(t, typ.MultiBind)
		assert.Equal(t, binding.KindClassMap, typ.MultiBind.Kind)
		assert.False(t, typ.MultiBind.IsLazy())
	}
}

func TestDecodeDefaults(t *testing.T) {
	t.Parallel()

	f := decode(t, "x.dagger.yml", `
package: com.acme
types:
  - name: com.acme.sub.Worker
  - name: Plugin
    kind: interface
    multiBind: {}
`)
	assert.Equal(t, "com.acme.sub.Worker", f.Types[0].Name)
	assert.Equal(t, KindClass, f.Types[0].Kind)
	assert.Equal(t, binding.KindSet, f.Types[1].MultiBind.Kind)
	assert.True(t, f.Types[1].MultiBind.IsLazy())
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, path, text string
	}{
		{"unknown yaml field", "x.dagger.yaml", "package: com.acme\nbinds: []\n"},
		{"unknown toml field", "x.dagger.toml", "package = \"com.acme\"\nbinds = []\n"},
		{"empty document", "x.dagger.yaml", ""},
		{"missing package", "x.dagger.yaml", "types: []\n"},
		{"unknown kind", "x.dagger.yaml", "package: com.acme\ntypes: [{name: Foo, kind: enum}]\n"},
		{"unknown multi-binding kind", "x.dagger.yaml", "package: com.acme\ntypes: [{name: Foo, multiBind: {kind: LIST}}]\n"},
		{"unsupported extension", "x.dagger.json", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.path, []byte(tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestScanOptions(t *testing.T) {
	t.Parallel()

	dir := extract(t, "project.txtar")
	s := NewScanner(ScanOptions{
		Include: []string{"api.dagger.yaml", "*.dagger.yml"},
		Exclude: []string{"./web/"},
	}, nil)
	files, err := s.Scan(context.Background(), dir, filepath.Join(dir, "api"))
	require.NoError(t, err)
	require.Len(t, files, 1, "overlapping roots yield each file once")
	assert.Equal(t, "com.acme.api", files[0].Package)
}

func TestScanCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dagger.yaml"), []byte("package: com.acme\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner(ScanOptions{}, nil).Scan(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}
