package binding

import "errors"

// DefaultModuleName is the module name used when a package declares none.
const DefaultModuleName = "AutoBindings"

// Module is a frozen, named collection of bindings within a package.
// Obtain one from ModuleBuilder.Build. The bindings it hands out must not
// be modified.
type Module struct {
	pkg         string
	name        string
	single      bool
	encapsulate bool
	bindings    []Binding
}

func (m Module) Package() string { return m.pkg }
func (m Module) Name() string    { return m.name }

// QualifiedName is the package-qualified module name.
func (m Module) QualifiedName() string {
	return m.pkg + "." + m.name
}

// Single reports whether the module absorbs all discovered bindings.
func (m Module) Single() bool { return m.single }

// Encapsulated reports whether the module's internals are hidden behind a
// private component.
func (m Module) Encapsulated() bool { return m.encapsulate }

// Bindings returns the module's bindings in declaration order.
func (m Module) Bindings() []Binding {
	return append([]Binding(nil), m.bindings...)
}

// Singles returns the module's single bindings in declaration order.
func (m Module) Singles() []*SingleBinding {
	var out []*SingleBinding
	for _, b := range m.bindings {
		if s, ok := b.(*SingleBinding); ok {
			out = append(out, s)
		}
	}
	return out
}

// Multis returns the module's aggregation points in declaration order.
func (m Module) Multis() []*MultiBinding {
	var out []*MultiBinding
	for _, b := range m.bindings {
		if mb, ok := b.(*MultiBinding); ok {
			out = append(out, mb)
		}
	}
	return out
}

// Bound reports whether some binding of the module makes t available,
// directly or as its deferred form.
func (m Module) Bound(t string) bool {
	for _, b := range m.bindings {
		if b.Interface() == t || LazyOf(b.Interface()) == t {
			return true
		}
	}
	return false
}

// ModuleBuilder accumulates bindings for one module.
type ModuleBuilder struct {
	pkg         string
	name        string
	single      bool
	encapsulate bool
	bindings    []Binding
}

// NewModule starts a module named name in package pkg. An empty name selects
// DefaultModuleName.
func NewModule(pkg, name string) *ModuleBuilder {
	if name == "" {
		name = DefaultModuleName
	}
	return &ModuleBuilder{pkg: pkg, name: name}
}

func (b *ModuleBuilder) Package() string { return b.pkg }
func (b *ModuleBuilder) Name() string    { return b.name }

func (b *ModuleBuilder) Single(v bool) *ModuleBuilder {
	b.single = v
	return b
}

func (b *ModuleBuilder) Encapsulate(v bool) *ModuleBuilder {
	b.encapsulate = v
	return b
}

// IsSingle reports the current single flag.
func (b *ModuleBuilder) IsSingle() bool { return b.single }

// Add appends bindings. Nil bindings are ignored.
func (b *ModuleBuilder) Add(bs ...Binding) *ModuleBuilder {
	for _, x := range bs {
		switch v := x.(type) {
		case *SingleBinding:
			if v != nil {
				b.bindings = append(b.bindings, v)
			}
		case *MultiBinding:
			if v != nil {
				b.bindings = append(b.bindings, v)
			}
		}
	}
	return b
}

// Build freezes the module. Bindings are copied, so later changes to the
// builder or to the added values do not affect the result. An aggregation
// point declared twice with identical settings collapses to one; declared
// twice with different settings it is an error.
func (b *ModuleBuilder) Build() (Module, error) {
	if b.pkg == "" {
		return Module{}, errors.New("module has no package")
	}
	m := Module{
		pkg:         b.pkg,
		name:        b.name,
		single:      b.single,
		encapsulate: b.encapsulate,
		bindings:    make([]Binding, 0, len(b.bindings)),
	}
	multis := make(map[string]MultiBinding)
	for _, x := range b.bindings {
		switch v := x.(type) {
		case *SingleBinding:
			m.bindings = append(m.bindings, v.clone())
		case *MultiBinding:
			if prev, ok := multis[v.InterfaceName]; ok {
				if prev != *v {
					return Module{}, InModule(m.QualifiedName(),
						Errorf(ErrConflictingAggregation, v.InterfaceName,
							"declared as %s (lazy=%t) and %s (lazy=%t)", prev.Kind, prev.Lazy, v.Kind, v.Lazy))
				}
				continue
			}
			multis[v.InterfaceName] = *v
			c := *v
			m.bindings = append(m.bindings, &c)
		}
	}
	return m, nil
}

// MarshalYAML renders the module for inspection.
func (m Module) MarshalYAML() (any, error) {
	return struct {
		Module        string           `yaml:"module"`
		Single        bool             `yaml:"single,omitempty"`
		Encapsulate   bool             `yaml:"encapsulate,omitempty"`
		Bindings      []*SingleBinding `yaml:"bindings,omitempty"`
		MultiBindings []*MultiBinding  `yaml:"multiBindings,omitempty"`
	}{m.QualifiedName(), m.single, m.encapsulate, m.Singles(), m.Multis()}, nil
}
