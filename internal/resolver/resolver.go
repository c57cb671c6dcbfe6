// Package resolver discovers binding declarations and groups them into
// modules.
package resolver

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/azahnen/dagger-auto/internal/binding"
)

// Resolver turns the declaration files of one round into frozen modules.
type Resolver struct {
	logger *log.Logger
}

// New creates a resolver. A nil logger discards output.
func New(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{logger: logger}
}

// Resolve builds the modules for files.
//
// Packages with a module block get that module; the aggregation interfaces it
// names are foreign to every other package. Bindings are grouped by package
// in first-seen order, unless exactly one module is declared and it is
// single, in which case it absorbs every binding.
func (r *Resolver) Resolve(files []*File) ([]binding.Module, error) {
	u, err := newUniverse(files)
	if err != nil {
		return nil, err
	}

	var predefined []*binding.ModuleBuilder
	byPkg := make(map[string]*binding.ModuleBuilder)
	foreign := make(map[string]bool)
	for _, f := range files {
		if f.Module == nil {
			continue
		}
		if _, ok := byPkg[f.Package]; ok {
			return nil, fmt.Errorf("%s: package %s already declares a module", f.Path, f.Package)
		}
		b := binding.NewModule(f.Package, f.Module.Name).
			Single(f.Module.Single).
			Encapsulate(f.Module.Encapsulate)
		for _, ref := range f.Module.MultiBindings {
			mb := u.multiBinding(u.qualify(f.Package, ref))
			b.Add(mb)
			foreign[mb.InterfaceName] = true
		}
		byPkg[f.Package] = b
		predefined = append(predefined, b)
	}

	// declaredMulti maps each aggregation interface declared in the round to
	// its package.
	declaredMulti := make(map[string]string)
	for _, d := range u.types {
		if d.MultiBind != nil {
			declaredMulti[u.canonical(d.Name)] = d.pkg
		}
	}
	absorb := len(predefined) == 1 && predefined[0].IsSingle()

	var bindings []binding.Binding
	for _, f := range files {
		for _, t := range f.Types {
			d := u.lookup(t.Name)
			if d.MultiBind != nil {
				bindings = append(bindings, u.multiBinding(d.Name))
			}
			if d.Bind == nil {
				continue
			}
			singles, err := r.singles(u, d, declaredMulti, foreign, absorb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.file, err)
			}
			bindings = append(bindings, singles...)
		}
	}

	var builders []*binding.ModuleBuilder
	if absorb {
		builders = []*binding.ModuleBuilder{predefined[0].Add(bindings...)}
	} else {
		groups := make(map[string]*binding.ModuleBuilder)
		for _, b := range bindings {
			g, ok := groups[b.Package()]
			if !ok {
				if g = byPkg[b.Package()]; g == nil {
					g = binding.NewModule(b.Package(), "")
				}
				groups[b.Package()] = g
				builders = append(builders, g)
			}
			g.Add(b)
		}
		for _, p := range predefined {
			if _, ok := groups[p.Package()]; !ok {
				builders = append(builders, p)
			}
		}
	}

	modules := make([]binding.Module, 0, len(builders))
	for _, b := range builders {
		m, err := b.Build()
		if err != nil {
			return nil, err
		}
		r.logger.Debug("module", "name", m.QualifiedName(), "bindings", len(m.Bindings()), "encapsulated", m.Encapsulated())
		modules = append(modules, m)
	}
	return modules, nil
}

// singles binds the implementation d to its selected interfaces. A
// contribution is in the same module as its aggregation point when both
// share a package, or when one single module absorbs the whole round.
func (r *Resolver) singles(u *universe, d *declared, declaredMulti map[string]string, foreign map[string]bool, absorb bool) ([]binding.Binding, error) {
	supers := u.supertypes(d)
	byName := make(map[string]supertype, len(supers))
	names := make([]string, 0, len(supers))
	excluded := make(map[string]bool)
	for _, st := range supers {
		byName[st.name] = st
		names = append(names, st.name)
		if st.decl != nil && st.decl.MultiBind != nil {
			for _, ex := range st.decl.MultiBind.Exclude {
				excluded[u.canonical(u.qualify(st.decl.pkg, ex))] = true
			}
		}
	}

	targets := names
	if len(d.Bind.Interfaces) > 0 {
		targets = nil
		for _, ref := range d.Bind.Interfaces {
			name := u.canonical(u.qualify(d.pkg, ref))
			if _, ok := byName[name]; !ok {
				return nil, binding.Errorf(binding.ErrInvalidInterface, d.Name,
					"%s is not one of its interfaces [%s]", name, strings.Join(names, ", "))
			}
			targets = append(targets, name)
		}
	}

	impl := u.canonical(d.Name)
	injections := u.injections(d, make(map[string]bool))
	seen := make(map[string]bool)
	var out []binding.Binding
	for _, name := range targets {
		if excluded[name] || seen[name] {
			continue
		}
		seen[name] = true
		owner, declaredHere := declaredMulti[name]

		s := &binding.SingleBinding{
			PackageName:            d.pkg,
			Implementation:         impl,
			ImplementationInstance: binding.InstanceName(impl),
			InterfaceName:          name,
			InterfaceSimpleName:    binding.SimpleName(name),
			MultiBindSameModule:    declaredHere && (absorb || owner == d.pkg),
			MultiBindOtherModule:   foreign[name],
			Injections:             injections,
		}
		if st := byName[name].decl; st != nil && st.MultiBind != nil {
			s.MultiBind = st.MultiBind.Kind
		} else if foreign[name] {
			s.MultiBind = binding.KindSet
		}
		switch s.MultiBind {
		case binding.KindStringMap:
			s.MultiBindKey = d.Bind.MapKeyString
		case binding.KindClassMap:
			if d.Bind.MapKeyClass != "" {
				s.MultiBindKey = u.qualify(d.pkg, d.Bind.MapKeyClass)
			}
		}
		if _, err := s.Key(); err != nil {
			return nil, err
		}
		r.logger.Debug("bind", "implementation", impl, "interface", name, "multiBind", s.MultiBind)
		out = append(out, s)
	}
	return out, nil
}
