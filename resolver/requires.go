package resolver

import (
	"context"

	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
)

// requiresPass implements spec.md §4.7.2. It reports changed=true whenever
// it installed a new package to satisfy a requirement (step 4); it never
// removes anything.
func (r *Resolver) requiresPass(ctx context.Context, txn *core.Transaction) (changed, unresolvable bool, err error) {
	members := txn.InstallOrUpdateMembers()

	for _, pkg := range members {
		requires, err := pkg.Requires(ctx)
		if err != nil {
			return changed, false, err
		}
		pkgProvides, err := pkg.Provides(ctx)
		if err != nil {
			return changed, false, err
		}
		pkgFiles, err := pkg.Files(ctx)
		if err != nil {
			return changed, false, err
		}

		for _, req := range requires {
			if r.selfProvided(req, pkgProvides, pkgFiles) {
				continue
			}

			satisfied, err := r.satisfiedByInstalled(ctx, txn, req)
			if err != nil {
				return changed, false, err
			}
			if satisfied {
				continue
			}

			if r.satisfiedByPeer(ctx, req, pkg, members) {
				continue
			}

			satisfied, err = r.satisfyFromAvailable(ctx, txn, req)
			if err != nil {
				return changed, false, err
			}
			if satisfied {
				changed = true
				continue
			}

			detail := &core.MissingRequiresError{Package: pkg, Requirement: req}
			txn.MarkUnresolved(pkg, core.ReasonMissingRequires, detail)
			return changed, true, nil
		}
	}

	return changed, false, nil
}

// selfProvided implements §4.7.2 step 1.
func (r *Resolver) selfProvided(req core.PackageDependency, provides []core.PackageDependency, files []string) bool {
	for _, p := range provides {
		if core.Satisfies(req, p) {
			return true
		}
	}
	if !req.IsFileRequirement() {
		return false
	}
	for _, f := range files {
		if f == req.Name {
			return true
		}
	}
	return false
}

// satisfiedByInstalled implements §4.7.2 step 2.
func (r *Resolver) satisfiedByInstalled(ctx context.Context, txn *core.Transaction, req core.PackageDependency) (bool, error) {
	it, err := r.Installed.Backend().SearchProvides(ctx, req)
	if err != nil {
		return false, err
	}
	hits, err := r.drain(ctx, r.installedID(), it)
	if err != nil {
		return false, err
	}
	for _, hit := range hits {
		if !txn.InRemove(hit) {
			return true, nil
		}
	}

	if !req.IsFileRequirement() {
		return false, nil
	}
	it, err = r.Installed.Backend().SearchFiles(ctx, req.Name)
	if err != nil {
		return false, err
	}
	fileHits, err := r.drain(ctx, r.installedID(), it)
	if err != nil {
		return false, err
	}
	for _, hit := range fileHits {
		if !txn.InRemove(hit) {
			return true, nil
		}
	}
	return false, nil
}

// satisfiedByPeer implements §4.7.2 step 3.
func (r *Resolver) satisfiedByPeer(ctx context.Context, req core.PackageDependency, pkg *core.Package, members []*core.Package) bool {
	for _, peer := range members {
		if peer == pkg {
			continue
		}
		peerProvides, err := peer.Provides(ctx)
		if err != nil {
			continue
		}
		for _, pp := range peerProvides {
			if core.Satisfies(req, pp) {
				return true
			}
		}
		if !req.IsFileRequirement() {
			continue
		}
		peerFiles, err := peer.Files(ctx)
		if err != nil {
			continue
		}
		for _, f := range peerFiles {
			if f == req.Name {
				return true
			}
		}
	}
	return false
}

// satisfyFromAvailable implements §4.7.2 step 4: gather every available
// candidate across search_provides (and search_files for file reqs),
// choose the best per §4.7.4, install it, and release every
// non-winning candidate's transient reference.
func (r *Resolver) satisfyFromAvailable(ctx context.Context, txn *core.Transaction, req core.PackageDependency) (bool, error) {
	candidates, err := r.drainAvailable(ctx, repo.SearchProvidesQuery(req))
	if err != nil {
		return false, err
	}
	if req.IsFileRequirement() {
		fileCandidates, err := r.drainAvailable(ctx, repo.SearchFilesQuery(req.Name))
		if err != nil {
			return false, err
		}
		candidates = append(candidates, fileCandidates...)
	}
	candidates = r.dedupeCandidates(ctx, candidates)
	if len(candidates) == 0 {
		return false, nil
	}

	best := chooseBest(r.HostArch, candidates)
	for _, candidate := range candidates {
		if candidate != best {
			r.release(ctx, repositoryID(candidate), candidate)
		}
	}
	txn.AddInstall(best)
	return true, nil
}

// dedupeCandidates drops repeats (the same package can surface from both
// search_provides and search_files for one requirement), releasing the
// extra reference each repeat's own intern call acquired.
func (r *Resolver) dedupeCandidates(ctx context.Context, candidates []*core.Package) []*core.Package {
	if len(candidates) < 2 {
		return candidates
	}
	seen := make(map[*core.Package]struct{}, len(candidates))
	out := make([]*core.Package, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			r.release(ctx, repositoryID(c), c)
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
