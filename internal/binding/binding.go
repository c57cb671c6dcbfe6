// Package binding holds the binding model consumed by the compiler: modules,
// single bindings, aggregation points and the naming rules they share.
package binding

import (
	"fmt"
	"strings"
)

// Kind classifies a multi-binding.
type Kind int

const (
	// KindNone marks a binding that is not a contribution.
	KindNone Kind = iota
	KindSet
	KindStringMap
	KindClassMap
)

var kindNames = map[Kind]string{
	KindSet:       "SET",
	KindStringMap: "STRING_MAP",
	KindClassMap:  "CLASS_MAP",
}

// ParseKind parses a multi-binding kind. The empty string is the default kind,
// SET. Both the short and the descriptive spellings are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SET":
		return KindSet, nil
	case "STRING_MAP", "STRING_KEYED_MAP":
		return KindStringMap, nil
	case "CLASS_MAP", "TYPE_KEYED_MAP":
		return KindClassMap, nil
	case "NONE":
		return KindNone, nil
	}
	return KindNone, fmt.Errorf("unknown multi-binding kind %q", s)
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "NONE"
}

// Keyed reports whether contributions of this kind need a map key.
func (k Kind) Keyed() bool {
	return k == KindStringMap || k == KindClassMap
}

// Collection returns the collection type aggregating element type t.
func (k Kind) Collection(t string) string {
	switch k {
	case KindStringMap:
		return StringMapOf(t)
	case KindClassMap:
		return ClassMapOf(t)
	default:
		return SetOf(t)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k == KindNone {
		return nil, nil
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Binding is either a *SingleBinding or a *MultiBinding.
type Binding interface {
	// Package is the package the binding belongs to.
	Package() string
	// Interface is the type the binding makes available: the interface of a
	// single binding, the collection type of an aggregation point.
	Interface() string
	// LazyInterface is Interface in its deferred form, if the binding has one.
	LazyInterface() string

	binding()
}

// Injection is a constructor dependency of an implementation.
type Injection struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// SingleBinding maps one implementation to one interface it satisfies.
type SingleBinding struct {
	PackageName            string      `yaml:"package"`
	Implementation         string      `yaml:"implementation"`
	ImplementationInstance string      `yaml:"instance"`
	InterfaceName          string      `yaml:"interface"`
	InterfaceSimpleName    string      `yaml:"interfaceSimpleName"`
	MultiBind              Kind        `yaml:"multiBind,omitempty"`
	MultiBindKey           string      `yaml:"multiBindKey,omitempty"`
	MultiBindSameModule    bool        `yaml:"multiBindSameModule,omitempty"`
	MultiBindOtherModule   bool        `yaml:"multiBindOtherModule,omitempty"`
	Injections             []Injection `yaml:"injections,omitempty"`
}

func (s *SingleBinding) Package() string       { return s.PackageName }
func (s *SingleBinding) Interface() string     { return s.InterfaceName }
func (s *SingleBinding) LazyInterface() string { return s.InterfaceName }
func (*SingleBinding) binding()                {}

// Contributes reports whether the binding feeds an aggregation point.
func (s *SingleBinding) Contributes() bool {
	return s.MultiBind != KindNone
}

// Key returns the validated contribution key: empty for set contributions,
// the string key or the class key for map contributions.
func (s *SingleBinding) Key() (string, error) {
	switch s.MultiBind {
	case KindStringMap:
		if strings.TrimSpace(s.MultiBindKey) == "" {
			return "", Errorf(ErrMissingMapKey, s.Implementation,
				"contribution to %s needs a string key", s.InterfaceName)
		}
		return s.MultiBindKey, nil
	case KindClassMap:
		if s.MultiBindKey == "" || s.MultiBindKey == NoKeyType {
			return "", Errorf(ErrMissingMapKey, s.Implementation,
				"contribution to %s needs a class key", s.InterfaceName)
		}
		return s.MultiBindKey, nil
	}
	return "", nil
}

func (s *SingleBinding) clone() *SingleBinding {
	c := *s
	c.Injections = nil
	seen := make(map[string]bool, len(s.Injections))
	for _, inj := range s.Injections {
		if seen[inj.Type] {
			continue
		}
		seen[inj.Type] = true
		c.Injections = append(c.Injections, inj)
	}
	return &c
}

// MultiBinding declares an aggregation point: a set or map collecting every
// contribution to one interface.
type MultiBinding struct {
	PackageName         string `yaml:"package"`
	InterfaceName       string `yaml:"interface"`
	InterfaceSimpleName string `yaml:"interfaceSimpleName"`
	Kind                Kind   `yaml:"kind"`
	Lazy                bool   `yaml:"lazy"`
}

func (m *MultiBinding) Package() string { return m.PackageName }

func (m *MultiBinding) Interface() string {
	return m.Kind.Collection(m.InterfaceName)
}

func (m *MultiBinding) LazyInterface() string {
	if m.Lazy {
		return LazyOf(m.Interface())
	}
	return m.Interface()
}

func (*MultiBinding) binding() {}

// Accessor is the conventional accessor name for the aggregated collection.
func (m *MultiBinding) Accessor() string {
	return LowerCamel(m.InterfaceSimpleName)
}
