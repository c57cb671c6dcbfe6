package binding

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Container type names used when rendering collection and deferred forms.
const (
	LazyType = "dagger.Lazy"
	SetType  = "java.util.Set"
	MapType  = "java.util.Map"

	// NoKeyType is the type-key sentinel meaning no class key was given.
	NoKeyType = "java.lang.Void"
	// ObjectType is the implicit root supertype; it is never bindable.
	ObjectType = "java.lang.Object"

	wildcard = "?"
)

// LazyOf wraps t in the deferred-handle type.
func LazyOf(t string) string {
	return LazyType + "<" + t + ">"
}

// IsLazy reports whether t is a deferred handle.
func IsLazy(t string) bool {
	return isWrapped(t, LazyType)
}

// Unlazy strips one deferred-handle wrapper, if present.
func Unlazy(t string) string {
	return unwrap(t, LazyType)
}

// SetOf returns the set type with element t.
func SetOf(t string) string {
	return SetType + "<" + t + ">"
}

// IsSet reports whether t is a set type.
func IsSet(t string) bool {
	return isWrapped(t, SetType)
}

// Unset strips one set wrapper, if present.
func Unset(t string) string {
	return unwrap(t, SetType)
}

// StringMapOf returns the string-keyed map type with values of type t.
func StringMapOf(t string) string {
	return MapType + "<String, " + t + ">"
}

// ClassMapOf returns the class-keyed map type with values of type t.
func ClassMapOf(t string) string {
	return MapType + "<Class<?>, " + t + ">"
}

// IsCollection reports whether t is a collection of interfaces, either a set
// or a deferred handle to a set.
func IsCollection(t string) bool {
	return IsSet(Unlazy(t))
}

// Element strips the deferred-handle and set wrappers to recover the bindable
// element type.
func Element(t string) string {
	return Unset(Unlazy(t))
}

// Erase drops the type arguments of t.
//
//	"com.acme.Repo<com.acme.User>" → "com.acme.Repo"
func Erase(t string) string {
	if i := strings.IndexByte(t, '<'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return strings.TrimSpace(t)
}

// SimpleName returns the unqualified name of t without type arguments.
//
//	"com.acme.Repo<?>" → "Repo"
func SimpleName(t string) string {
	erased := Erase(t)
	if i := strings.LastIndexByte(erased, '.'); i >= 0 {
		return erased[i+1:]
	}
	return erased
}

// PackageOf returns the qualifier of t, or "" for an unqualified name.
func PackageOf(t string) string {
	erased := Erase(t)
	if i := strings.LastIndexByte(erased, '.'); i >= 0 {
		return erased[:i]
	}
	return ""
}

// LowerCamel lower-cases the first rune of s.
func LowerCamel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// InstanceName is the conventional variable name for a value of type t.
//
//	"com.acme.FooImpl" → "fooImpl"
func InstanceName(t string) string {
	return LowerCamel(SimpleName(t))
}

// ParameterName is the conventional parameter name for an injected type.
// Collection-typed parameters are pluralised when not already plural.
//
//	"dagger.Lazy<java.util.Set<com.acme.Plugin>>" → "plugins"
func ParameterName(t string) string {
	name := SimpleName(Element(t))
	if IsCollection(t) && !strings.HasSuffix(name, "s") {
		name += "s"
	}
	return LowerCamel(name)
}

// Canonical renders a declared type with its type parameters. Unresolved
// single-letter parameters become wildcards, so two occurrences of the same
// raw generic type collapse to one key.
//
//	Canonical("com.acme.Repo", []string{"T"}) → "com.acme.Repo<?>"
func Canonical(name string, params []string) string {
	if len(params) == 0 {
		return name
	}
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = normalizeArg(p)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

// Normalize rewrites the single-letter type arguments of a type reference to
// wildcards, recursively.
//
//	"java.util.Map<K, java.util.List<V>>" → "java.util.Map<?, java.util.List<?>>"
func Normalize(t string) string {
	head, args := TypeArgs(t)
	if args == nil {
		return head
	}
	for i, a := range args {
		args[i] = normalizeArg(a)
	}
	return head + "<" + strings.Join(args, ", ") + ">"
}

// TypeArgs splits a type reference into its head and its top-level type
// arguments. args is nil when t has none.
//
//	"java.util.Map<K, java.util.List<V>>" → "java.util.Map", ["K", "java.util.List<V>"]
func TypeArgs(t string) (head string, args []string) {
	t = strings.TrimSpace(t)
	open := strings.IndexByte(t, '<')
	if open < 0 || !strings.HasSuffix(t, ">") {
		return t, nil
	}
	return strings.TrimSpace(t[:open]), splitArgs(t[open+1 : len(t)-1])
}

func normalizeArg(a string) string {
	a = strings.TrimSpace(a)
	if utf8.RuneCountInString(a) == 1 && a != wildcard {
		return wildcard
	}
	return Normalize(a)
}

// splitArgs splits a type-argument list on top-level commas.
func splitArgs(s string) []string {
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func isWrapped(t, wrapper string) bool {
	return strings.HasPrefix(t, wrapper+"<") && strings.HasSuffix(t, ">")
}

func unwrap(t, wrapper string) string {
	if !isWrapped(t, wrapper) {
		return t
	}
	return t[len(wrapper)+1 : len(t)-1]
}
