package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func plugin() *MultiBinding {
	return &MultiBinding{
		PackageName:         "com.acme",
		InterfaceName:       "com.acme.Plugin",
		InterfaceSimpleName: "Plugin",
		Kind:                KindSet,
		Lazy:                true,
	}
}

func fooToRepo() *SingleBinding {
	return &SingleBinding{
		PackageName:            "com.acme",
		Implementation:         "com.acme.FooImpl",
		ImplementationInstance: "fooImpl",
		InterfaceName:          "com.acme.Repo",
		InterfaceSimpleName:    "Repo",
	}
}

func TestModuleBuilder(t *testing.T) {
	t.Parallel()

	single := fooToRepo()
	single.Injections = []Injection{
		{Type: "com.acme.Clock", Name: "clock"},
		{Type: "com.acme.Clock", Name: "otherClock"},
	}

	b := NewModule("com.acme", "").Encapsulate(true).Add(single, plugin(), nil)
	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "com.acme.AutoBindings", m.QualifiedName())
	assert.True(t, m.Encapsulated())
	assert.False(t, m.Single())
	require.Len(t, m.Bindings(), 2)
	require.Len(t, m.Singles(), 1)
	require.Len(t, m.Multis(), 1)
	assert.Equal(t, []Injection{{Type: "com.acme.Clock", Name: "clock"}}, m.Singles()[0].Injections,
		"duplicate injection types keep the first entry")

	single.InterfaceName = "com.acme.Changed"
	b.Add(fooToRepo())
	assert.Equal(t, "com.acme.Repo", m.Singles()[0].InterfaceName, "built module is frozen")
	assert.Len(t, m.Bindings(), 2)
}

func TestModuleBound(t *testing.T) {
	t.Parallel()

	m, err := NewModule("com.acme", "Wiring").Add(fooToRepo(), plugin()).Build()
	require.NoError(t, err)

	assert.True(t, m.Bound("com.acme.Repo"))
	assert.True(t, m.Bound("dagger.Lazy<com.acme.Repo>"))
	assert.True(t, m.Bound("java.util.Set<com.acme.Plugin>"))
	assert.True(t, m.Bound("dagger.Lazy<java.util.Set<com.acme.Plugin>>"))
	assert.False(t, m.Bound("com.acme.Clock"))
	assert.False(t, m.Bound("java.util.Set<com.acme.Handler>"))
}

func TestModuleAggregationDuplicates(t *testing.T) {
	t.Parallel()

	m, err := NewModule("com.acme", "").Add(plugin(), plugin()).Build()
	require.NoError(t, err)
	assert.Len(t, m.Multis(), 1, "identical declarations collapse")

	eager := plugin()
	eager.Lazy = false
	_, err = NewModule("com.acme", "").Add(plugin(), eager).Build()
	require.ErrorIs(t, err, ErrConflictingAggregation)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "com.acme.AutoBindings", ce.Module)
	assert.Equal(t, "com.acme.Plugin", ce.Subject)

	_, err = NewModule("", "").Build()
	require.Error(t, err)
}

func TestMultiBindingForms(t *testing.T) {
	t.Parallel()

	p := plugin()
	assert.Equal(t, "java.util.Set<com.acme.Plugin>", p.Interface())
	assert.Equal(t, "dagger.Lazy<java.util.Set<com.acme.Plugin>>", p.LazyInterface())
	assert.Equal(t, "plugin", p.Accessor())

	p.Lazy = false
	assert.Equal(t, p.Interface(), p.LazyInterface())

	p.Kind = KindStringMap
	assert.Equal(t, "java.util.Map<String, com.acme.Plugin>", p.Interface())
	p.Kind = KindClassMap
	assert.Equal(t, "java.util.Map<Class<?>, com.acme.Plugin>", p.Interface())

	s := fooToRepo()
	assert.Equal(t, s.Interface(), s.LazyInterface())
}

func TestSingleBindingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		key     string
		want    string
		wantErr error
	}{
		{name: "plain", kind: KindNone},
		{name: "set ignores key", kind: KindSet, key: "x"},
		{name: "string key", kind: KindStringMap, key: "json", want: "json"},
		{name: "blank string key", kind: KindStringMap, key: "  ", wantErr: ErrMissingMapKey},
		{name: "class key", kind: KindClassMap, key: "com.acme.Json", want: "com.acme.Json"},
		{name: "missing class key", kind: KindClassMap, wantErr: ErrMissingMapKey},
		{name: "sentinel class key", kind: KindClassMap, key: NoKeyType, wantErr: ErrMissingMapKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := fooToRepo()
			s.MultiBind = tt.kind
			s.MultiBindKey = tt.key
			got, err := s.Key()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var ce *ConfigError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, "com.acme.FooImpl", ce.Subject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{
		"":                 KindSet,
		"set":              KindSet,
		"STRING_MAP":       KindStringMap,
		"string_keyed_map": KindStringMap,
		"CLASS_MAP":        KindClassMap,
		"TYPE_KEYED_MAP":   KindClassMap,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("LIST")
	require.Error(t, err)
}

func TestModuleYAML(t *testing.T) {
	t.Parallel()

	single := fooToRepo()
	single.MultiBind = KindStringMap
	single.MultiBindKey = "foo"
	m, err := NewModule("com.acme", "").Add(single, plugin()).Build()
	require.NoError(t, err)

	out, err := yaml.Marshal(m)
	require.NoError(t, err)

	var doc struct {
		Module   string `yaml:"module"`
		Bindings []struct {
			Interface string `yaml:"interface"`
			MultiBind Kind   `yaml:"multiBind"`
		} `yaml:"bindings"`
		MultiBindings []struct {
			Kind string `yaml:"kind"`
		} `yaml:"multiBindings"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "com.acme.AutoBindings", doc.Module)
	require.Len(t, doc.Bindings, 1)
	assert.Equal(t, KindStringMap, doc.Bindings[0].MultiBind)
	require.Len(t, doc.MultiBindings, 1)
	assert.Equal(t, "SET", doc.MultiBindings[0].Kind)
}
