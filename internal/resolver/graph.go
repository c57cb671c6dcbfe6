package resolver

import (
	"fmt"
	"strings"

	"github.com/azahnen/dagger-auto/internal/binding"
)

// declared is a type of the current round together with its origin.
type declared struct {
	TypeDecl
	pkg  string
	file string
}

// universe indexes the declared types of one round by erased name.
type universe struct {
	types map[string]*declared
}

func newUniverse(files []*File) (*universe, error) {
	u := &universe{types: make(map[string]*declared)}
	for _, f := range files {
		for _, t := range f.Types {
			name := binding.Erase(t.Name)
			if prev, ok := u.types[name]; ok {
				return nil, fmt.Errorf("type %s is declared in %s and %s", name, prev.file, f.Path)
			}
			u.types[name] = &declared{TypeDecl: t, pkg: f.Package, file: f.Path}
		}
	}
	return u, nil
}

func (u *universe) lookup(ref string) *declared {
	return u.types[binding.Erase(ref)]
}

// qualify resolves ref relative to pkg, type arguments included. An
// unqualified name is qualified only when pkg declares it; anything else is
// kept as written.
//
//	qualify("com.acme", "dagger.Lazy<java.util.Set<Route>>") → "dagger.Lazy<java.util.Set<com.acme.Route>>"
func (u *universe) qualify(pkg, ref string) string {
	head, args := binding.TypeArgs(ref)
	if !strings.Contains(head, ".") {
		if _, ok := u.types[pkg+"."+head]; ok {
			head = pkg + "." + head
		}
	}
	if args == nil {
		return head
	}
	for i, a := range args {
		args[i] = u.qualify(pkg, a)
	}
	return head + "<" + strings.Join(args, ", ") + ">"
}

// canonical is the deduplication key of a type reference. Declared types
// render with their own type parameters, so every parameterisation of a
// generic interface maps to the same key.
func (u *universe) canonical(ref string) string {
	if d := u.lookup(ref); d != nil {
		return binding.Canonical(binding.Erase(d.Name), d.TypeParams)
	}
	return binding.Normalize(ref)
}

// supertype is a bindable interface of some declared type.
type supertype struct {
	name string    // canonical
	decl *declared // nil when declared outside this round
}

// supertypes returns the transitive interface supertypes of d, depth first
// in declaration order, deduplicated by canonical name. Supertypes declared
// outside the round are taken to be interfaces; the object root never is.
func (u *universe) supertypes(d *declared) []supertype {
	var out []supertype
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(d *declared)
	visit = func(d *declared) {
		key := binding.Erase(d.Name)
		if visited[key] {
			return
		}
		visited[key] = true
		for _, ref := range d.Supertypes {
			ref = u.qualify(d.pkg, ref)
			if binding.Erase(ref) == binding.ObjectType {
				continue
			}
			st := u.lookup(ref)
			if st == nil || st.Kind == KindInterface {
				name := u.canonical(ref)
				if !seen[name] {
					seen[name] = true
					out = append(out, supertype{name: name, decl: st})
				}
			}
			if st != nil {
				visit(st)
			}
		}
	}
	visit(d)
	return out
}

// multiBinding describes the aggregation point for ref. Interfaces without
// their own multiBind declaration aggregate into a lazy set.
func (u *universe) multiBinding(ref string) *binding.MultiBinding {
	mb := &binding.MultiBinding{
		PackageName:         binding.PackageOf(ref),
		InterfaceName:       u.canonical(ref),
		InterfaceSimpleName: binding.SimpleName(ref),
		Kind:                binding.KindSet,
		Lazy:                true,
	}
	if d := u.lookup(ref); d != nil {
		mb.PackageName = d.pkg
		if d.MultiBind != nil {
			mb.Kind = d.MultiBind.Kind
			mb.Lazy = d.MultiBind.IsLazy()
		}
	}
	return mb
}

// injections lists the constructor dependencies of d. Assisted parameters
// are supplied by the caller and skipped; a factory parameter stands for the
// dependencies of every type the factory produces.
func (u *universe) injections(d *declared, factories map[string]bool) []binding.Injection {
	var out []binding.Injection
	for _, p := range d.Inject {
		if p.Assisted {
			continue
		}
		ref := u.qualify(d.pkg, p.Type)
		if f := u.lookup(ref); f != nil && f.Kind == KindFactory {
			if factories[f.Name] {
				continue
			}
			factories[f.Name] = true
			for _, prod := range f.Produces {
				if pd := u.lookup(u.qualify(f.pkg, prod)); pd != nil {
					out = append(out, u.injections(pd, factories)...)
				}
			}
			continue
		}
		name := p.Name
		if name == "" {
			name = binding.ParameterName(ref)
		}
		out = append(out, binding.Injection{Type: ref, Name: name})
	}
	return out
}
