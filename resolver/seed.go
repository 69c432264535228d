package resolver

import (
	"context"
	"fmt"

	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
)

// SeedInstall implements spec.md §2's "each [install] intent resolved
// against repositories to pick an initial candidate": it gathers every
// available package named name across the enabled repository set, picks
// the best one per §4.7.4, and returns it uninstalled (the caller still
// has to call Transaction.AddInstall). A name with no available candidate
// is a caller-facing error, not an UNRESOLVABLE transaction member, since
// no Package exists yet to carry into txn.Unresolved.
func (r *Resolver) SeedInstall(ctx context.Context, name string) (*core.Package, error) {
	candidates, err := r.drainAvailable(ctx, repo.ListByNameQuery(name))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("resolver: no package named %q found in any available repository", name)
	}
	best := chooseBest(r.HostArch, candidates)
	for _, candidate := range candidates {
		if candidate != best {
			r.release(ctx, repositoryID(candidate), candidate)
		}
	}
	return best, nil
}

// SeedUpdate resolves an update intent the same way SeedInstall does: best
// available candidate by name. The resolver's removal pass later decides,
// per spec.md §4.7.3, whether this pairs with an installed package or
// demotes to a plain install.
func (r *Resolver) SeedUpdate(ctx context.Context, name string) (*core.Package, error) {
	return r.SeedInstall(ctx, name)
}

// SeedRemove resolves a remove intent against the installed repository:
// there is exactly one candidate set to pick from (spec.md §3: "exactly
// one" installed repository), so the best-candidate tiebreak never needs
// the arch/repo-id rules §4.7.4 defines for available repositories — an
// installed system has at most one package matching (name, arch).
func (r *Resolver) SeedRemove(ctx context.Context, name string) (*core.Package, error) {
	if r.Installed == nil || r.Installed.Backend() == nil {
		return nil, fmt.Errorf("resolver: no installed repository configured")
	}
	it, err := r.Installed.Backend().ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	hits, err := r.drain(ctx, r.installedID(), it)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("resolver: no installed package named %q", name)
	}
	best := hits[0]
	for _, hit := range hits[1:] {
		if core.CompareEVRValues(hit.EVR(), best.EVR()) > 0 {
			best = hit
		}
	}
	return best, nil
}
