package resolver

import "github.com/mlow/low/core"

// chooseBest implements spec.md §4.7.4: among candidates for the same
// install intent, compare by EVR descending, break ties by
// core.ChooseBestForSystem against hostArch, and break any remaining tie by
// repository id lexicographically. candidates must be non-empty.
func chooseBest(hostArch core.Arch, candidates []*core.Package) *core.Package {
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if preferCandidate(hostArch, candidate, best) {
			best = candidate
		}
	}
	return best
}

// preferCandidate reports whether a outranks b under §4.7.4's ordering.
func preferCandidate(hostArch core.Arch, a, b *core.Package) bool {
	if cmp := core.CompareEVRValues(a.EVR(), b.EVR()); cmp != 0 {
		return cmp > 0
	}
	if archCmp := core.ChooseBestForSystem(hostArch, a.Arch, b.Arch); archCmp != 0 {
		return archCmp < 0
	}
	return repositoryID(a) < repositoryID(b)
}

func repositoryID(pkg *core.Package) string {
	if pkg == nil || pkg.Repository == nil {
		return ""
	}
	return pkg.Repository.ID()
}
