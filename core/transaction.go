package core

import (
	"time"
)

// AddResult is returned by Transaction's add-* methods, per spec §4.6.
type AddResult int

const (
	Added AddResult = iota
	AlreadyPresent
)

// UnresolvedReason tags why a package ended up in the unresolved set.
type UnresolvedReason string

const (
	ReasonMissingRequires    UnresolvedReason = "missing_requires"
	ReasonConflictsInstalled UnresolvedReason = "conflicts_installed"
	ReasonConflictsPeer      UnresolvedReason = "conflicts_peer"
	ReasonAllMirrorsFailed   UnresolvedReason = "all_mirrors_failed"
)

// UnresolvedEntry pairs a package with why resolution gave up on it.
type UnresolvedEntry struct {
	Package *Package
	Reason  UnresolvedReason
	Detail  error
}

// UpdatePair is a member of Transaction.update: the available package u
// paired with the installed package it replaces (spec §3's related_pkg).
type UpdatePair struct {
	Package     *Package
	RelatedPkg  *Package
}

// ProgressFunc is the resolver progress hook of spec §4.6/§9: invoked at
// pass boundaries with an opaque, monotonically increasing step count.
type ProgressFunc func(step int, detail string)

// Transaction holds the five membership sets of spec §3/§4.6. Membership is
// keyed by Package pointer identity per spec's reference-counted sharing
// invariant: a package reached through two different paths (e.g. an
// installed copy found again via a peer scan) must be the *same* pointer
// for these maps to dedupe correctly, which is pkgcache's job, not
// Transaction's.
type Transaction struct {
	Installed Repository
	Available RepositorySetView

	install    map[*Package]struct{}
	update     map[*Package]*UpdatePair
	updated    map[*Package]*Package // installed pkg -> replacing update pkg
	remove     map[*Package]struct{}
	unresolved map[*Package]UnresolvedEntry

	// installOrder/updateOrder/removeOrder preserve insertion order for the
	// resolver's stable-visitation requirement (spec §5).
	installOrder []*Package
	updateOrder  []*Package
	removeOrder  []*Package

	onProgress ProgressFunc
	step       int

	CreatedAt time.Time
}

// Repository is the subset of the repository query surface (spec §4.3) the
// transaction and resolver need from the installed-packages view. The full
// interface (with every search_* query) lives in package repo; Transaction
// only needs to be told "what backs my installed view" so it and the
// resolver can query it without importing repo (avoiding a core<->repo
// import cycle, since repo.Repository embeds *core.Package results).
type Repository interface {
	ID() string
}

// RepositorySetView is the subset of repo.RepositorySet the transaction
// needs to hold a reference to; same import-cycle rationale as Repository.
type RepositorySetView interface {
	Len() int
}

// NewTransaction constructs an empty transaction, per spec §4.6 "new".
func NewTransaction(installed Repository, available RepositorySetView, onProgress ProgressFunc) *Transaction {
	if onProgress == nil {
		onProgress = func(int, string) {}
	}
	return &Transaction{
		Installed:  installed,
		Available:  available,
		install:    map[*Package]struct{}{},
		update:     map[*Package]*UpdatePair{},
		updated:    map[*Package]*Package{},
		remove:     map[*Package]struct{}{},
		unresolved: map[*Package]UnresolvedEntry{},
		onProgress: onProgress,
		CreatedAt:  time.Now().UTC(),
	}
}

func (t *Transaction) reportProgress(detail string) {
	if t == nil || t.onProgress == nil {
		return
	}
	t.step++
	t.onProgress(t.step, detail)
}

// AddInstall adds pkg to the install set. Identity dedup per spec §4.6.
func (t *Transaction) AddInstall(pkg *Package) AddResult {
	if t == nil || pkg == nil {
		return AlreadyPresent
	}
	if _, ok := t.install[pkg]; ok {
		return AlreadyPresent
	}
	t.install[pkg] = struct{}{}
	t.installOrder = append(t.installOrder, pkg)
	t.reportProgress("install:" + pkg.NEVRA())
	return Added
}

// AddUpdate always appends, per spec §4.6: "always appends; resolver later
// pairs with the installed version being replaced."
func (t *Transaction) AddUpdate(pkg *Package) AddResult {
	if t == nil || pkg == nil {
		return AlreadyPresent
	}
	if _, ok := t.update[pkg]; ok {
		return AlreadyPresent
	}
	t.update[pkg] = &UpdatePair{Package: pkg}
	t.updateOrder = append(t.updateOrder, pkg)
	t.reportProgress("update:" + pkg.NEVRA())
	return Added
}

// AddRemove adds pkg to the remove set. Identity dedup per spec §4.6.
func (t *Transaction) AddRemove(pkg *Package) AddResult {
	if t == nil || pkg == nil {
		return AlreadyPresent
	}
	if _, ok := t.remove[pkg]; ok {
		return AlreadyPresent
	}
	t.remove[pkg] = struct{}{}
	t.removeOrder = append(t.removeOrder, pkg)
	t.reportProgress("remove:" + pkg.NEVRA())
	return Added
}

// PairUpdate records that update member u replaces installed package u',
// moving u' into updated and wiring the related_pkg back-edge. Called by
// the resolver per spec §4.7.3.
func (t *Transaction) PairUpdate(u, replaced *Package) {
	if t == nil || u == nil || replaced == nil {
		return
	}
	if pair, ok := t.update[u]; ok {
		pair.RelatedPkg = replaced
	}
	t.updated[replaced] = u
}

// PromoteUpdateToInstall demotes an update-set member with no installed
// counterpart to a plain install, per spec §4.7.3's last sentence.
func (t *Transaction) PromoteUpdateToInstall(u *Package) {
	if t == nil || u == nil {
		return
	}
	if _, ok := t.update[u]; !ok {
		return
	}
	delete(t.update, u)
	for i, p := range t.updateOrder {
		if p == u {
			t.updateOrder = append(t.updateOrder[:i], t.updateOrder[i+1:]...)
			break
		}
	}
	t.AddInstall(u)
}

// MarkUnresolved moves pkg out of install/update and into unresolved.
func (t *Transaction) MarkUnresolved(pkg *Package, reason UnresolvedReason, detail error) {
	if t == nil || pkg == nil {
		return
	}
	delete(t.install, pkg)
	delete(t.update, pkg)
	t.unresolved[pkg] = UnresolvedEntry{Package: pkg, Reason: reason, Detail: detail}
}

// InInstallOrUpdate reports whether pkg is a member of install ∪ update,
// the set spec §4.7.1/§4.7.2 iterate.
func (t *Transaction) InInstallOrUpdate(pkg *Package) bool {
	if t == nil || pkg == nil {
		return false
	}
	_, inInstall := t.install[pkg]
	_, inUpdate := t.update[pkg]
	return inInstall || inUpdate
}

func (t *Transaction) InRemove(pkg *Package) bool {
	if t == nil || pkg == nil {
		return false
	}
	_, ok := t.remove[pkg]
	return ok
}

// InstallOrUpdateMembers returns install ∪ update in stable insertion order
// (spec §5: "the order of visiting install ∪ update members is stable
// given an insertion-ordered membership set").
func (t *Transaction) InstallOrUpdateMembers() []*Package {
	if t == nil {
		return nil
	}
	out := make([]*Package, 0, len(t.installOrder)+len(t.updateOrder))
	out = append(out, t.installOrder...)
	out = append(out, t.updateOrder...)
	return out
}

func (t *Transaction) Install() []*Package {
	if t == nil {
		return nil
	}
	return append([]*Package(nil), t.installOrder...)
}

func (t *Transaction) Update() []UpdatePair {
	if t == nil {
		return nil
	}
	out := make([]UpdatePair, 0, len(t.updateOrder))
	for _, p := range t.updateOrder {
		if pair, ok := t.update[p]; ok {
			out = append(out, *pair)
		}
	}
	return out
}

func (t *Transaction) Updated() []*Package {
	if t == nil {
		return nil
	}
	out := make([]*Package, 0, len(t.updated))
	for replaced := range t.updated {
		out = append(out, replaced)
	}
	return out
}

func (t *Transaction) Remove() []*Package {
	if t == nil {
		return nil
	}
	return append([]*Package(nil), t.removeOrder...)
}

func (t *Transaction) Unresolved() []UnresolvedEntry {
	if t == nil {
		return nil
	}
	out := make([]UnresolvedEntry, 0, len(t.unresolved))
	for _, e := range t.unresolved {
		out = append(out, e)
	}
	return out
}

// Disjoint verifies testable property 1: the five sets are pairwise
// disjoint by package identity.
func (t *Transaction) Disjoint() bool {
	if t == nil {
		return true
	}
	sets := []map[*Package]struct{}{t.install, toSet(t.update), t.remove, toSet(t.unresolvedPkgs())}
	seen := map[*Package]int{}
	for _, s := range sets {
		for pkg := range s {
			seen[pkg]++
			if seen[pkg] > 1 {
				return false
			}
		}
	}
	return true
}

func (t *Transaction) unresolvedPkgs() map[*Package]struct{} {
	out := map[*Package]struct{}{}
	for pkg := range t.unresolved {
		out[pkg] = struct{}{}
	}
	return out
}

func toSet(m map[*Package]*UpdatePair) map[*Package]struct{} {
	out := make(map[*Package]struct{}, len(m))
	for pkg := range m {
		out[pkg] = struct{}{}
	}
	return out
}

// SizeDelta sums install/update package sizes minus remove/updated package
// sizes (SPEC_FULL §7 supplement, low_transaction_rpm_size in the original).
func (t *Transaction) SizeDelta() int64 {
	if t == nil {
		return 0
	}
	var delta int64
	for _, p := range t.installOrder {
		delta += p.PackageSize
	}
	for _, p := range t.updateOrder {
		delta += p.PackageSize
	}
	for _, p := range t.removeOrder {
		delta -= p.InstalledSize
	}
	for replaced := range t.updated {
		delta -= replaced.InstalledSize
	}
	return delta
}

// Free drops the transaction's references, per spec §4.6 "free". Since Go
// packages are GC-managed, this only clears the maps/slices so the
// transaction itself becomes immediately eligible for collection and any
// external holder of the Transaction sees an empty transaction if it
// inspects it after Free.
func (t *Transaction) Free() {
	if t == nil {
		return
	}
	t.install = map[*Package]struct{}{}
	t.update = map[*Package]*UpdatePair{}
	t.updated = map[*Package]*Package{}
	t.remove = map[*Package]struct{}{}
	t.unresolved = map[*Package]UnresolvedEntry{}
	t.installOrder = nil
	t.updateOrder = nil
	t.removeOrder = nil
}
