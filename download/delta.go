package download

import (
	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
)

// DeltaCandidate is the outcome of checking whether a delta download can
// substitute for a full one, per spec.md §4.5's "a delta may substitute
// for a full download when a verifier approves" and SPEC_FULL.md §7's
// explicit exclusion of any rebuild algorithm: this package only decides
// whether the delta is usable, never how to apply it.
type DeltaCandidate struct {
	BaseNEVRA    string
	LocationHref string
	Digest       string
	DigestKind   core.DigestKind
	Size         int64
}

// ResolveDelta looks up pkgName's delta entry in repository, approving it
// only when baseInstalledNEVRA (the NEVRA of the installed package this
// delta would be applied against) matches the delta's recorded base. A
// mismatched base means the installed package has moved on since the
// delta was published, so the caller must fall back to a full download.
func ResolveDelta(repository *repo.Repository, pkgName, baseInstalledNEVRA string) (DeltaCandidate, bool) {
	if repository == nil {
		return DeltaCandidate{}, false
	}
	info, ok := repository.GetDelta(pkgName)
	if !ok {
		return DeltaCandidate{}, false
	}
	if info.BaseNEVRA != baseInstalledNEVRA {
		return DeltaCandidate{}, false
	}
	return DeltaCandidate{
		BaseNEVRA:    info.BaseNEVRA,
		LocationHref: info.LocationHref,
		Digest:       info.Digest,
		DigestKind:   info.DigestKind,
		Size:         info.Size,
	}, true
}

// VerifyDeltaDownload re-checks an already-fetched delta file against its
// recorded digest and size, the same integrity gate DownloadIfMissing
// applies to full downloads (spec.md §4.5). A delta that fails here is not
// retried as a delta; the caller falls back to DownloadFromMirror for the
// full package.
func VerifyDeltaDownload(path string, candidate DeltaCandidate) error {
	if IsMissing(path, candidate.Digest, candidate.DigestKind, candidate.Size) {
		return &core.DigestMismatchError{Path: path, Expected: candidate.Digest}
	}
	return nil
}
