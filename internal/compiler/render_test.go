package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azahnen/dagger-auto/internal/binding"
)

func TestJavaQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, in, want string
	}{
		{"plain", "json", `"json"`},
		{"empty", "", `""`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"short escapes", "\b\t\n\f\r", `"\b\t\n\f\r"`},
		{"bell and vertical tab", "\a\v", `"\u0007\u000b"`},
		{"delete", "\x7f", `"\u007f"`},
		{"nul", "\x00", `"\u0000"`},
		{"latin", "caf\u00e9", `"caf\u00e9"`},
		{"supplementary rune", "\U0001F600", `"\ud83d\ude00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, javaQuote(tt.in))
		})
	}
}

func TestStringKeyRendersJavaLiteral(t *testing.T) {
	t.Parallel()

	s := contribution("com.acme.BellCodec", "com.acme.Codec", true)
	s.MultiBind = binding.KindStringMap
	s.MultiBindKey = "bell\a"
	m := build(t, binding.NewModule(pkg, "").Add(s, aggregation("com.acme.Codec", binding.KindStringMap, false)))

	out, err := New().Compile([]binding.Module{m})
	require.NoError(t, err)
	assert.Contains(t, out["com.acme.AutoBindings"], `@dagger.multibindings.StringKey("bell\u0007")`)
	assert.NotContains(t, out["com.acme.AutoBindings"], `\a`)
}
