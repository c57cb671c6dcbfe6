package compiler

import "strings"

// ForeignPolicy decides whether an aggregation point declared by a module is
// owned by another compilation unit. Foreign aggregation points get no
// collection declaration in the module that names them.
type ForeignPolicy interface {
	Foreign(pkg, iface string) bool
}

// ForeignFunc adapts a function to ForeignPolicy.
type ForeignFunc func(pkg, iface string) bool

func (f ForeignFunc) Foreign(pkg, iface string) bool { return f(pkg, iface) }

// SuffixPolicy treats an interface as foreign when its name ends with one of
// Suffixes, unless the declaring package starts with one of Exempt.
// The zero value treats nothing as foreign.
type SuffixPolicy struct {
	Suffixes []string
	Exempt   []string
}

func (p SuffixPolicy) Foreign(pkg, iface string) bool {
	for _, prefix := range p.Exempt {
		if strings.HasPrefix(pkg, prefix) {
			return false
		}
	}
	for _, suffix := range p.Suffixes {
		if strings.HasSuffix(iface, suffix) {
			return true
		}
	}
	return false
}
