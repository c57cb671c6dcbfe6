package compiler

import (
	"github.com/azahnen/dagger-auto/internal/binding"
)

// Generated type names derive from the module name.
const (
	encapsulatedSuffix = "Encapsulated"
	componentSuffix    = "EncapsulatedComponent"
	externalInterface  = "ExternalMultiBindings"
	builderPrefix      = "Dagger"
)

// bindRule is one @Binds method: implementation to interface, optionally as
// a contribution.
type bindRule struct {
	Method         string
	Interface      string
	Implementation string
	Instance       string
	Kind           binding.Kind
	Key            string
}

func (r bindRule) IntoSet() bool       { return r.Kind == binding.KindSet }
func (r bindRule) IntoStringMap() bool { return r.Kind == binding.KindStringMap }
func (r bindRule) IntoClassMap() bool  { return r.Kind == binding.KindClassMap }

// aggregator declares a possibly empty collection.
type aggregator struct {
	Method     string
	Collection string
}

// bridge feeds an externally supplied collection into a private graph.
type bridge struct {
	Method     string
	Collection string
	Accessor   string
	Unwrap     bool
}

type member struct {
	Name string
	Type string
}

// provision re-exposes a component accessor in the public graph.
type provision struct {
	Method          string
	Type            string
	ElementsIntoSet bool
}

type modulePlan struct {
	Package      string
	Name         string
	Encapsulated bool
	Rules        []bindRule
	Aggregators  []aggregator
	Bridges      []bridge
	External     []member
}

type componentPlan struct {
	Package   string
	Name      string
	Module    string
	External  string
	Accessors []member
	Instances []member
}

type wrapperPlan struct {
	Package         string
	Name            string
	Component       string
	Builder         string
	External        string
	Params          []member
	Instances       []member
	ExternalMembers []member
	Provisions      []provision
	Aggregators     []aggregator
}

// nameSet records generated names within one scope and rejects collisions.
type nameSet map[string]string

func (n nameSet) claim(name, owner string) error {
	if prev, ok := n[name]; ok {
		return binding.Errorf(binding.ErrDuplicateAccessor, owner, "%q is already generated for %s", name, prev)
	}
	n[name] = owner
	return nil
}

func unsupported(subject, iface string) error {
	return binding.Errorf(binding.ErrUnsupportedEncapsulation, subject,
		"map multi-binding %s cannot cross an encapsulation boundary", iface)
}

// unit is the shared view of one module during emission.
type unit struct {
	module   binding.Module
	local    []*binding.MultiBinding
	isLocal  map[string]bool
	injected []member
}

func newUnit(m binding.Module, policy ForeignPolicy) (*unit, error) {
	u := &unit{module: m, isLocal: make(map[string]bool)}
	for _, mb := range m.Multis() {
		if policy.Foreign(m.Package(), mb.InterfaceName) {
			continue
		}
		u.local = append(u.local, mb)
		u.isLocal[mb.InterfaceName] = true
	}

	seen := make(map[string]string)
	for _, s := range m.Singles() {
		for _, inj := range s.Injections {
			if !binding.IsCollection(inj.Type) || m.Bound(inj.Type) {
				continue
			}
			if t, ok := seen[inj.Name]; ok {
				if t != inj.Type {
					return nil, binding.Errorf(binding.ErrDuplicateAccessor, s.Implementation,
						"parameter %q is injected as %s and as %s", inj.Name, t, inj.Type)
				}
				continue
			}
			seen[inj.Name] = inj.Type
			u.injected = append(u.injected, member{Name: inj.Name, Type: inj.Type})
		}
	}
	return u, nil
}

func (u *unit) qualified(name string) string {
	return u.module.Package() + "." + name
}

func (u *unit) moduleName() string {
	if u.module.Encapsulated() {
		return u.module.Name() + encapsulatedSuffix
	}
	return u.module.Name()
}

func (u *unit) componentName() string {
	return u.module.Name() + componentSuffix
}

// externalType is the qualified name of the inner module's collection
// contract.
func (u *unit) externalType() string {
	return u.qualified(u.moduleName()) + "." + externalInterface
}

// modulePlan plans the module holding the bind rules: the public module of
// a plain unit, the private one of an encapsulated unit.
func (u *unit) modulePlan() (*modulePlan, error) {
	encapsulated := u.module.Encapsulated()
	p := &modulePlan{
		Package:      u.module.Package(),
		Name:         u.moduleName(),
		Encapsulated: encapsulated,
	}
	methods := make(nameSet)

	for _, s := range u.module.Singles() {
		if encapsulated && s.MultiBind.Keyed() {
			return nil, unsupported(s.Implementation, s.InterfaceName)
		}
		key, err := s.Key()
		if err != nil {
			return nil, err
		}
		r := bindRule{
			Method:         s.ImplementationInstance + "To" + s.InterfaceSimpleName,
			Interface:      s.InterfaceName,
			Implementation: s.Implementation,
			Instance:       s.ImplementationInstance,
			Kind:           s.MultiBind,
			Key:            key,
		}
		if err := methods.claim(r.Method, s.Implementation); err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, r)
	}

	for _, mb := range u.local {
		if !encapsulated {
			a := aggregator{Method: mb.Accessor() + "Multi", Collection: mb.Interface()}
			if err := methods.claim(a.Method, mb.InterfaceName); err != nil {
				return nil, err
			}
			p.Aggregators = append(p.Aggregators, a)
			continue
		}
		if mb.Kind.Keyed() {
			return nil, unsupported(mb.InterfaceName, mb.InterfaceName)
		}
		b := bridge{
			Method:     mb.Accessor() + "External",
			Collection: mb.Interface(),
			Accessor:   mb.Accessor(),
			Unwrap:     mb.Lazy,
		}
		if err := methods.claim(b.Method, mb.InterfaceName); err != nil {
			return nil, err
		}
		p.Bridges = append(p.Bridges, b)
	}

	if !encapsulated {
		return p, nil
	}

	for _, inj := range u.injected {
		b := bridge{
			Method:     inj.Name + "External",
			Collection: binding.Unlazy(inj.Type),
			Accessor:   inj.Name,
			Unwrap:     binding.IsLazy(inj.Type),
		}
		if err := methods.claim(b.Method, inj.Type); err != nil {
			return nil, err
		}
		p.Bridges = append(p.Bridges, b)
	}

	ext, err := u.external()
	if err != nil {
		return nil, err
	}
	p.External = ext
	return p, nil
}

// external lists the collections the private graph obtains from the public
// one: every local aggregation point in its deferred form, then every
// foreign aggregation an implementation injects.
func (u *unit) external() ([]member, error) {
	names := make(nameSet)
	out := make([]member, 0, len(u.local)+len(u.injected))
	for _, mb := range u.local {
		m := member{Name: mb.Accessor(), Type: mb.LazyInterface()}
		if err := names.claim(m.Name, mb.InterfaceName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	for _, inj := range u.injected {
		if err := names.claim(inj.Name, inj.Type); err != nil {
			return nil, err
		}
		out = append(out, inj)
	}
	return out, nil
}

// exposure is one accessor of the private component.
type exposure struct {
	member
	single *binding.SingleBinding
	multi  *binding.MultiBinding
}

// exposures lists the component accessors, one per bound interface. A local
// aggregation point represents every binding to its interface.
func (u *unit) exposures() ([]exposure, error) {
	names := make(nameSet)
	seen := make(map[string]bool)
	consumed := make(map[string]bool, len(u.injected))
	for _, inj := range u.injected {
		consumed[binding.Unlazy(inj.Type)] = true
	}

	var out []exposure
	for _, b := range u.module.Bindings() {
		var (
			x     exposure
			iface string
		)
		switch b := b.(type) {
		case *binding.SingleBinding:
			iface = b.InterfaceName
			if b.MultiBind.Keyed() {
				return nil, unsupported(b.Implementation, b.InterfaceName)
			}
			if u.isLocal[b.InterfaceName] || seen[b.InterfaceName] {
				continue
			}
			x = exposure{single: b, member: member{Name: binding.LowerCamel(b.InterfaceSimpleName), Type: b.InterfaceName}}
			if b.Contributes() {
				x.Type = binding.SetOf(b.InterfaceName)
				if consumed[x.Type] {
					return nil, binding.Errorf(binding.ErrUnsupportedEncapsulation, b.Implementation,
						"%s is both contributed to and injected from outside", x.Type)
				}
			}
		case *binding.MultiBinding:
			iface = b.InterfaceName
			if !u.isLocal[b.InterfaceName] || seen[b.InterfaceName] {
				continue
			}
			if b.Kind.Keyed() {
				return nil, unsupported(b.InterfaceName, b.InterfaceName)
			}
			x = exposure{multi: b, member: member{Name: b.Accessor(), Type: b.LazyInterface()}}
		}
		seen[iface] = true
		if err := names.claim(x.Name, x.Type); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// requirements lists, in binding order, every value the private graph needs
// from outside: unbound constructor dependencies and local aggregation
// points. Non-collection dependencies are requested in their eager form.
func (u *unit) requirements() ([]member, error) {
	seen := make(map[string]string)
	var out []member
	add := func(m member, owner string) error {
		if t, ok := seen[m.Name]; ok {
			if t != m.Type {
				return binding.Errorf(binding.ErrDuplicateAccessor, owner,
					"parameter %q is required as %s and as %s", m.Name, t, m.Type)
			}
			return nil
		}
		seen[m.Name] = m.Type
		out = append(out, m)
		return nil
	}

	for _, b := range u.module.Bindings() {
		switch b := b.(type) {
		case *binding.SingleBinding:
			for _, inj := range b.Injections {
				if u.module.Bound(inj.Type) {
					continue
				}
				t := inj.Type
				if !binding.IsCollection(t) {
					t = binding.Unlazy(t)
				}
				if err := add(member{Name: inj.Name, Type: t}, b.Implementation); err != nil {
					return nil, err
				}
			}
		case *binding.MultiBinding:
			if !u.isLocal[b.InterfaceName] {
				continue
			}
			if err := add(member{Name: b.Accessor(), Type: b.LazyInterface()}, b.InterfaceName); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func instances(reqs []member) []member {
	var out []member
	for _, r := range reqs {
		if !binding.IsCollection(r.Type) {
			out = append(out, r)
		}
	}
	return out
}

func (u *unit) componentPlan(exps []exposure, reqs []member) (*componentPlan, error) {
	p := &componentPlan{
		Package:   u.module.Package(),
		Name:      u.componentName(),
		Module:    u.qualified(u.moduleName()),
		External:  u.externalType(),
		Instances: instances(reqs),
	}
	for _, x := range exps {
		p.Accessors = append(p.Accessors, x.member)
	}

	methods := nameSet{"externalMultiBindings": "the collection contract", "build": "the builder"}
	for _, in := range p.Instances {
		if err := methods.claim(in.Name, in.Type); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (u *unit) wrapperPlan(exps []exposure, reqs []member) (*wrapperPlan, error) {
	ext, err := u.external()
	if err != nil {
		return nil, err
	}
	p := &wrapperPlan{
		Package:         u.module.Package(),
		Name:            u.module.Name(),
		Component:       u.qualified(u.componentName()),
		Builder:         u.qualified(builderPrefix + u.componentName()),
		External:        u.externalType(),
		Params:          reqs,
		Instances:       instances(reqs),
		ExternalMembers: ext,
	}

	methods := nameSet{"create": "the component factory"}
	for _, x := range exps {
		switch {
		case x.multi != nil:
			a := aggregator{Method: x.Name + "Multi", Collection: x.multi.Interface()}
			if err := methods.claim(a.Method, x.multi.InterfaceName); err != nil {
				return nil, err
			}
			p.Aggregators = append(p.Aggregators, a)
		case x.single.Contributes():
			if x.single.MultiBindSameModule {
				continue
			}
			if err := methods.claim(x.Name, x.Type); err != nil {
				return nil, err
			}
			p.Provisions = append(p.Provisions, provision{Method: x.Name, Type: x.Type, ElementsIntoSet: true})
		default:
			if err := methods.claim(x.Name, x.Type); err != nil {
				return nil, err
			}
			p.Provisions = append(p.Provisions, provision{Method: x.Name, Type: x.Type})
		}
	}
	return p, nil
}
