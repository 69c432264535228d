package core

import (
	"fmt"
	"strings"
)

// DependencySense qualifies how a PackageDependency's evr constrains a
// candidate provide, per spec §3/§4.2.
type DependencySense string

const (
	SenseEQ   DependencySense = "EQ"
	SenseLT   DependencySense = "LT"
	SenseLE   DependencySense = "LE"
	SenseGT   DependencySense = "GT"
	SenseGE   DependencySense = "GE"
	SenseNone DependencySense = "NONE"
)

var senseSymbols = map[string]DependencySense{
	"=":  SenseEQ,
	"<":  SenseLT,
	"<=": SenseLE,
	">":  SenseGT,
	">=": SenseGE,
}

var senseToSymbol = map[DependencySense]string{
	SenseEQ: "=",
	SenseLT: "<",
	SenseLE: "<=",
	SenseGT: ">",
	SenseGE: ">=",
}

// PackageDependency is the (name, sense, evr) triple spec §3 describes for
// provides/requires/conflicts/obsoletes entries.
type PackageDependency struct {
	Name  string
	Sense DependencySense
	EVR   string
}

// IsFileRequirement reports whether this dependency is a file requirement
// (its name begins with '/'), per spec §4.2.
func (d PackageDependency) IsFileRequirement() bool {
	return strings.HasPrefix(d.Name, "/")
}

// String renders the canonical "name" or "name SENSE evr" form (spec
// testable property 6: round-trip parse/serialize).
func (d PackageDependency) String() string {
	if d.Sense == SenseNone || d.Sense == "" {
		return d.Name
	}
	symbol, ok := senseToSymbol[d.Sense]
	if !ok {
		return d.Name
	}
	return fmt.Sprintf("%s %s %s", d.Name, symbol, d.EVR)
}

// ParseDependency accepts a bare name, or "name SENSE evr" with SENSE in
// {=, <, <=, >, >=}, whitespace tolerant (spec §4.2).
func ParseDependency(s string) (PackageDependency, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	switch len(fields) {
	case 0:
		return PackageDependency{}, fmt.Errorf("core: empty dependency string")
	case 1:
		return PackageDependency{Name: fields[0], Sense: SenseNone}, nil
	case 3:
		sense, ok := senseSymbols[fields[1]]
		if !ok {
			return PackageDependency{}, fmt.Errorf("core: unknown dependency sense %q", fields[1])
		}
		return PackageDependency{Name: fields[0], Sense: sense, EVR: fields[2]}, nil
	default:
		return PackageDependency{}, fmt.Errorf("core: malformed dependency string %q", s)
	}
}

// Satisfies reports whether provided satisfies required, per spec §4.2.
// Names must match exactly. An unversioned requirement is satisfied by any
// provide of the same name. A versioned requirement needs an unversioned or
// equals-versioned provide whose EVR compares to the requirement's EVR in
// the direction the requirement's sense demands.
func Satisfies(required, provided PackageDependency) bool {
	if required.Name != provided.Name {
		return false
	}
	if required.Sense == SenseNone || required.Sense == "" {
		return true
	}
	if provided.Sense != SenseNone && provided.Sense != "" && provided.Sense != SenseEQ {
		return false
	}
	cmp := CompareEVR(provided.EVR, required.EVR)
	switch required.Sense {
	case SenseEQ:
		return cmp == 0
	case SenseLT:
		return cmp < 0
	case SenseLE:
		return cmp <= 0
	case SenseGT:
		return cmp > 0
	case SenseGE:
		return cmp >= 0
	default:
		return false
	}
}
