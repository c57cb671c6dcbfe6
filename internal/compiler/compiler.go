// Package compiler turns binding modules into Dagger source artifacts.
//
// A plain module becomes one @dagger.Module. An encapsulated module becomes a
// private module, a private component built from it, and a public wrapper
// module that builds the component and re-exposes its bound interfaces.
// Aggregation points cross the boundary through the ExternalMultiBindings
// contract of the private module.
package compiler

import (
	"fmt"
	"slices"
	"text/template"

	"github.com/azahnen/dagger-auto/internal/binding"
)

// Artifacts maps fully qualified artifact names to generated source text.
type Artifacts map[string]string

// Names returns the artifact names in sorted order.
func (a Artifacts) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a Artifacts) add(name, text string) error {
	if _, ok := a[name]; ok {
		return binding.Errorf(binding.ErrDuplicateAccessor, name, "artifact is generated twice")
	}
	a[name] = text
	return nil
}

// Compiler emits artifacts for a set of modules. It holds no state between
// calls; Compile is deterministic and safe for concurrent use.
type Compiler struct {
	policy ForeignPolicy
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithForeignPolicy sets the policy deciding which aggregation points are
// declared by another compilation unit.
func WithForeignPolicy(p ForeignPolicy) Option {
	return func(c *Compiler) {
		if p != nil {
			c.policy = p
		}
	}
}

func New(opts ...Option) *Compiler {
	c := &Compiler{policy: SuffixPolicy{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile emits the artifacts for modules. Plain modules are emitted before
// encapsulated ones; the result does not depend on that order. Any
// configuration error aborts the whole call.
func (c *Compiler) Compile(modules []binding.Module) (Artifacts, error) {
	plain, encapsulated := partition(modules)
	out := make(Artifacts)

	for _, m := range plain {
		if err := c.compilePlain(out, m); err != nil {
			return nil, binding.InModule(m.QualifiedName(), err)
		}
	}
	for _, m := range encapsulated {
		if err := c.compileEncapsulated(out, m); err != nil {
			return nil, binding.InModule(m.QualifiedName(), err)
		}
	}
	return out, nil
}

func partition(modules []binding.Module) (plain, encapsulated []binding.Module) {
	for _, m := range modules {
		if m.Encapsulated() {
			encapsulated = append(encapsulated, m)
		} else {
			plain = append(plain, m)
		}
	}
	return plain, encapsulated
}

func (c *Compiler) compilePlain(out Artifacts, m binding.Module) error {
	u, err := newUnit(m, c.policy)
	if err != nil {
		return err
	}
	p, err := u.modulePlan()
	if err != nil {
		return err
	}
	return emit(out, u.qualified(p.Name), moduleTmpl, p)
}

func (c *Compiler) compileEncapsulated(out Artifacts, m binding.Module) error {
	u, err := newUnit(m, c.policy)
	if err != nil {
		return err
	}
	inner, err := u.modulePlan()
	if err != nil {
		return err
	}
	exps, err := u.exposures()
	if err != nil {
		return err
	}
	reqs, err := u.requirements()
	if err != nil {
		return err
	}
	component, err := u.componentPlan(exps, reqs)
	if err != nil {
		return err
	}
	wrapper, err := u.wrapperPlan(exps, reqs)
	if err != nil {
		return err
	}

	if err := emit(out, u.qualified(inner.Name), moduleTmpl, inner); err != nil {
		return err
	}
	if err := emit(out, u.qualified(component.Name), componentTmpl, component); err != nil {
		return err
	}
	return emit(out, u.qualified(wrapper.Name), wrapperTmpl, wrapper)
}

func emit(out Artifacts, name string, t *template.Template, data any) error {
	text, err := render(t, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return out.add(name, text)
}
