package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerForms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dagger.Lazy<com.acme.Plugin>", LazyOf("com.acme.Plugin"))
	assert.Equal(t, "java.util.Set<com.acme.Plugin>", SetOf("com.acme.Plugin"))
	assert.Equal(t, "java.util.Map<String, com.acme.Handler>", StringMapOf("com.acme.Handler"))
	assert.Equal(t, "java.util.Map<Class<?>, com.acme.Handler>", ClassMapOf("com.acme.Handler"))

	lazySet := LazyOf(SetOf("com.acme.Plugin"))
	assert.True(t, IsLazy(lazySet))
	assert.True(t, IsCollection(lazySet))
	assert.True(t, IsCollection(SetOf("com.acme.Plugin")))
	assert.False(t, IsCollection("com.acme.Plugin"))
	assert.False(t, IsCollection(LazyOf("com.acme.Plugin")))
	assert.False(t, IsCollection(StringMapOf("com.acme.Plugin")))
	assert.Equal(t, SetOf("com.acme.Plugin"), Unlazy(lazySet))
	assert.Equal(t, "com.acme.Plugin", Element(lazySet))
	assert.Equal(t, "com.acme.Plugin", Unlazy("com.acme.Plugin"))
}

func TestNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       func(string) string
		in, want string
	}{
		{"erase generic", Erase, "com.acme.Repo<com.acme.User>", "com.acme.Repo"},
		{"erase plain", Erase, "com.acme.Repo", "com.acme.Repo"},
		{"simple name ignores dotted args", SimpleName, "com.acme.Repo<com.acme.User>", "Repo"},
		{"simple name unqualified", SimpleName, "Repo", "Repo"},
		{"package of", PackageOf, "com.acme.Repo<?>", "com.acme"},
		{"package of unqualified", PackageOf, "Repo", ""},
		{"lower camel", LowerCamel, "FooImpl", "fooImpl"},
		{"lower camel empty", LowerCamel, "", ""},
		{"instance name", InstanceName, "com.acme.FooImpl", "fooImpl"},
		{"parameter plain", ParameterName, "com.acme.Clock", "clock"},
		{"parameter set pluralised", ParameterName, "java.util.Set<com.acme.Plugin>", "plugins"},
		{"parameter lazy set", ParameterName, "dagger.Lazy<java.util.Set<com.acme.Plugin>>", "plugins"},
		{"parameter already plural", ParameterName, "java.util.Set<com.acme.Metrics>", "metrics"},
		{"normalize nested", Normalize, "java.util.Map<K, java.util.List<V>>", "java.util.Map<?, java.util.List<?>>"},
		{"normalize keeps concrete", Normalize, "com.acme.Repo<com.acme.User>", "com.acme.Repo<com.acme.User>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "com.acme.Repo", Canonical("com.acme.Repo", nil))
	assert.Equal(t, "com.acme.Repo<?>", Canonical("com.acme.Repo", []string{"T"}))
	assert.Equal(t, "com.acme.Cache<?, ?>", Canonical("com.acme.Cache", []string{"K", "V"}))
	assert.Equal(t,
		Canonical("com.acme.Repo", []string{"T"}),
		Canonical("com.acme.Repo", []string{"U"}),
		"different type variables collapse to one key")
}

func TestTypeArgs(t *testing.T) {
	t.Parallel()

	head, args := TypeArgs("dagger.Lazy<java.util.Set<Route>>")
	assert.Equal(t, "dagger.Lazy", head)
	assert.Equal(t, []string{"java.util.Set<Route>"}, args)

	head, args = TypeArgs(" java.util.Map<String,Map<K, V>> ")
	assert.Equal(t, "java.util.Map", head)
	assert.Equal(t, []string{"String", "Map<K, V>"}, args)

	head, args = TypeArgs("Route")
	assert.Equal(t, "Route", head)
	assert.Nil(t, args)
}
