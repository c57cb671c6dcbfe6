package resolver

import (
	"fmt"
	"strings"

	"github.com/azahnen/dagger-auto/internal/binding"
)

// TypeKind classifies a declared type.
type TypeKind string

const (
	KindInterface TypeKind = "interface"
	KindClass     TypeKind = "class"
	KindFactory   TypeKind = "factory" // assisted-injection factory
)

// File is one declaration file: the annotated types of a single package.
type File struct {
	Path    string      `yaml:"-" toml:"-"`
	Package string      `yaml:"package" toml:"package"`
	Module  *AutoModule `yaml:"module,omitempty" toml:"module,omitempty"`
	Types   []TypeDecl  `yaml:"types" toml:"types"`
}

// AutoModule pre-declares the module of a package.
type AutoModule struct {
	Name          string   `yaml:"name" toml:"name"`
	Single        bool     `yaml:"single" toml:"single"`           // absorb all bindings of the round
	Encapsulate   bool     `yaml:"encapsulate" toml:"encapsulate"` // hide internals behind a component
	MultiBindings []string `yaml:"multiBindings" toml:"multiBindings"`
}

// TypeDecl describes one type and its binding annotations.
type TypeDecl struct {
	Name       string         `yaml:"name" toml:"name"`
	Kind       TypeKind       `yaml:"kind" toml:"kind"`
	TypeParams []string       `yaml:"typeParams" toml:"typeParams"`
	Supertypes []string       `yaml:"supertypes" toml:"supertypes"`
	Bind       *AutoBind      `yaml:"bind,omitempty" toml:"bind,omitempty"`
	MultiBind  *AutoMultiBind `yaml:"multiBind,omitempty" toml:"multiBind,omitempty"`
	Inject     []Param        `yaml:"inject" toml:"inject"`
	Produces   []string       `yaml:"produces" toml:"produces"` // factories only
}

// AutoBind binds an implementation to some or all of its interfaces.
type AutoBind struct {
	Interfaces   []string `yaml:"interfaces" toml:"interfaces"` // empty means all
	MapKeyString string   `yaml:"mapKeyString" toml:"mapKeyString"`
	MapKeyClass  string   `yaml:"mapKeyClass" toml:"mapKeyClass"`
}

// AutoMultiBind declares an interface as an aggregation point.
type AutoMultiBind struct {
	Kind    binding.Kind `yaml:"kind" toml:"kind"`
	Lazy    *bool        `yaml:"lazy" toml:"lazy"` // defaults to true
	Exclude []string     `yaml:"exclude" toml:"exclude"`
}

// Param is a constructor parameter.
type Param struct {
	Type     string `yaml:"type" toml:"type"`
	Name     string `yaml:"name" toml:"name"`
	Assisted bool   `yaml:"assisted" toml:"assisted"`
}

// IsLazy applies the default.
func (m *AutoMultiBind) IsLazy() bool {
	return m.Lazy == nil || *m.Lazy
}

// normalize qualifies names declared relative to the file's package and
// fills defaults.
func (f *File) normalize() error {
	if f.Package == "" {
		return fmt.Errorf("%s: missing package", f.Path)
	}
	for i := range f.Types {
		t := &f.Types[i]
		if t.Name == "" {
			return fmt.Errorf("%s: type %d has no name", f.Path, i)
		}
		if !strings.Contains(binding.Erase(t.Name), ".") {
			t.Name = f.Package + "." + t.Name
		}
		switch t.Kind {
		case "":
			t.Kind = KindClass
		case KindInterface, KindClass, KindFactory:
		default:
			return fmt.Errorf("%s: type %s has unknown kind %q", f.Path, t.Name, t.Kind)
		}
		if t.MultiBind != nil && t.MultiBind.Kind == binding.KindNone {
			t.MultiBind.Kind = binding.KindSet
		}
	}
	return nil
}
