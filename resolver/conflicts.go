package resolver

import (
	"context"

	"github.com/mlow/low/core"
)

// conflictsPass implements spec.md §4.7.1. It never mutates txn's
// membership sets (conflicts are a pure veto check), so it only ever
// reports whether it found an UNRESOLVABLE package.
func (r *Resolver) conflictsPass(ctx context.Context, txn *core.Transaction) (unresolvable bool, err error) {
	members := txn.InstallOrUpdateMembers()

	for _, pkg := range members {
		provides, err := pkg.Provides(ctx)
		if err != nil {
			return false, err
		}
		for _, p := range provides {
			// Installed packages whose conflict entry is satisfied by this
			// provide: search_conflicts(P) already compares
			// Satisfies(conflict_row, P), the direction spec.md §4.7.1
			// bullet 1 wants.
			it, err := r.Installed.Backend().SearchConflicts(ctx, p)
			if err != nil {
				return false, err
			}
			hits, err := r.drain(ctx, r.installedID(), it)
			if err != nil {
				return false, err
			}
			if len(hits) > 0 {
				txn.MarkUnresolved(pkg, core.ReasonConflictsInstalled, &core.ConflictsInstalledError{Package: pkg, Other: hits[0]})
				return true, nil
			}
		}

		conflicts, err := pkg.Conflicts(ctx)
		if err != nil {
			return false, err
		}
		for _, c := range conflicts {
			// Installed packages whose provide satisfies this conflict:
			// search_provides(C) compares Satisfies(C, provide_row), the
			// direction bullet 2 wants.
			it, err := r.Installed.Backend().SearchProvides(ctx, c)
			if err != nil {
				return false, err
			}
			hits, err := r.drain(ctx, r.installedID(), it)
			if err != nil {
				return false, err
			}
			for _, hit := range hits {
				if txn.InRemove(hit) {
					continue
				}
				txn.MarkUnresolved(pkg, core.ReasonConflictsInstalled, &core.ConflictsInstalledError{Package: pkg, Other: hit})
				return true, nil
			}
		}

		for _, c := range conflicts {
			for _, peer := range members {
				if peer == pkg {
					continue
				}
				peerProvides, err := peer.Provides(ctx)
				if err != nil {
					return false, err
				}
				for _, pp := range peerProvides {
					if core.Satisfies(c, pp) {
						txn.MarkUnresolved(pkg, core.ReasonConflictsPeer, &core.ConflictsPeerError{Package: pkg, Peer: peer})
						return true, nil
					}
				}
			}
		}
	}

	return false, nil
}
