package resolver

import (
	"context"

	"github.com/mlow/low/core"
)

// removalPass implements spec.md §4.7.3: first translate update-set members
// into updated pairs (or demote to plain installs), then cascade removals
// outward from remove ∪ updated until a pass adds nothing new.
func (r *Resolver) removalPass(ctx context.Context, txn *core.Transaction) (bool, error) {
	pairChanged, err := r.pairUpdates(ctx, txn)
	if err != nil {
		return false, err
	}
	cascadeChanged, err := r.removalCascade(ctx, txn)
	if err != nil {
		return false, err
	}
	return pairChanged || cascadeChanged, nil
}

// pairUpdates implements spec.md §4.7.3's last paragraph: for each update
// target u, find the installed package u' with the same name, a compatible
// arch, and a lower EVR, and pair them; a target with no such installed
// counterpart is demoted to a plain install.
func (r *Resolver) pairUpdates(ctx context.Context, txn *core.Transaction) (bool, error) {
	changed := false
	for _, pair := range txn.Update() {
		if pair.RelatedPkg != nil {
			continue
		}
		u := pair.Package

		it, err := r.Installed.Backend().ListByName(ctx, u.Name)
		if err != nil {
			return changed, err
		}
		candidates, err := r.drain(ctx, r.installedID(), it)
		if err != nil {
			return changed, err
		}

		var match *core.Package
		for _, candidate := range candidates {
			if !archCompatible(candidate.Arch, u.Arch) {
				continue
			}
			if core.CompareEVRValues(u.EVR(), candidate.EVR()) <= 0 {
				continue
			}
			if match == nil || core.CompareEVRValues(candidate.EVR(), match.EVR()) > 0 {
				match = candidate
			}
		}

		if match != nil {
			txn.PairUpdate(u, match)
		} else {
			txn.PromoteUpdateToInstall(u)
		}
		changed = true
	}
	return changed, nil
}

// archCompatible decides whether an installed package can be replaced by an
// update target of a different arch: exact match, or either side noarch.
// spec.md §4.7.3 says only "compatible arch" without naming the rule; this
// is an Open Question decision recorded in DESIGN.md.
func archCompatible(installed, update core.Arch) bool {
	return installed == update || installed == core.ArchNoarch || update == core.ArchNoarch
}

// removalCascade implements spec.md §4.7.3's first paragraph: every provide
// and file of a package in remove ∪ updated pulls in installed dependents
// (packages whose requires is satisfied by that provide, or which name that
// file), repeated until a pass adds nothing new.
func (r *Resolver) removalCascade(ctx context.Context, txn *core.Transaction) (bool, error) {
	changed := false
	for {
		passChanged := false
		seeds := append(append([]*core.Package(nil), txn.Remove()...), txn.Updated()...)

		for _, pkg := range seeds {
			provides, err := pkg.Provides(ctx)
			if err != nil {
				return changed, err
			}
			for _, p := range provides {
				added, err := r.pullInDependents(ctx, txn, p)
				if err != nil {
					return changed, err
				}
				passChanged = passChanged || added
			}

			files, err := pkg.Files(ctx)
			if err != nil {
				return changed, err
			}
			for _, f := range files {
				dep := core.PackageDependency{Name: f, Sense: core.SenseNone}
				added, err := r.pullInDependents(ctx, txn, dep)
				if err != nil {
					return changed, err
				}
				passChanged = passChanged || added
			}
		}

		changed = changed || passChanged
		if !passChanged {
			return changed, nil
		}
	}
}

func (r *Resolver) pullInDependents(ctx context.Context, txn *core.Transaction, dep core.PackageDependency) (bool, error) {
	it, err := r.Installed.Backend().SearchRequires(ctx, dep)
	if err != nil {
		return false, err
	}
	hits, err := r.drain(ctx, r.installedID(), it)
	if err != nil {
		return false, err
	}
	added := false
	for _, hit := range hits {
		if txn.InRemove(hit) {
			continue
		}
		txn.AddRemove(hit)
		added = true
	}
	return added, nil
}
