package download

import (
	"context"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mlow/low/core"
)

// Fetcher ties a Client, a Mirrors list, and a Layout together to
// implement spec.md §4.5's mirrored-download and fetch-if-missing
// operations. One Fetcher serves one repository.
type Fetcher struct {
	Client  *Client
	Mirrors *Mirrors
}

// NewFetcher builds a Fetcher over client and mirrors. client may be nil,
// in which case NewClient's defaults are used.
func NewFetcher(client *Client, mirrors *Mirrors) *Fetcher {
	if client == nil {
		client = NewClient()
	}
	return &Fetcher{Client: client, Mirrors: mirrors}
}

// DownloadFromMirror implements spec.md §4.5's mirrored download: pick a
// mirror, compose its URL with rel via JoinURL, truncate outPath, attempt
// the transfer, and on any transport or non-success response mark that
// mirror bad and retry with another. Returns *core.AllMirrorsFailedError
// when the mirror list is exhausted.
func (f *Fetcher) DownloadFromMirror(ctx context.Context, repoID, rel, outPath, displayName string, onProgress ProgressFunc) error {
	if err := EnsureParent(outPath); err != nil {
		return err
	}

	bo := newMirrorBackoff()
	for {
		base, ok := f.Mirrors.Pick(ctx)
		if !ok {
			return &core.AllMirrorsFailedError{RepoID: repoID}
		}

		url := JoinURL(base, rel)
		if err := truncate(outPath); err != nil {
			return err
		}

		var attemptErr error
		if IsFTP(url) {
			attemptErr = ftpGet(ctx, url, outPath, onProgress)
		} else {
			attemptErr = f.Client.Download(ctx, url, outPath, displayName, onProgress)
		}
		if attemptErr == nil {
			return nil
		}
		if attemptErr == ErrProgressCancelled {
			return attemptErr
		}

		f.Mirrors.MarkBad(base)

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// IsMissing implements spec.md §4.5's missing check: true when stat fails,
// the size doesn't match, or the computed digest's prefix doesn't match
// expectedDigest.
func IsMissing(path string, expectedDigest string, kind core.DigestKind, expectedSize int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	if expectedSize > 0 && info.Size() != expectedSize {
		return true
	}
	if kind == core.DigestNone || expectedDigest == "" {
		return false
	}
	actual, err := ComputeDigest(path, kind)
	if err != nil {
		return true
	}
	return !digestMatches(actual, expectedDigest)
}

// DownloadIfMissing implements spec.md §4.5's download_if_missing: fetch
// only when IsMissing reports true, then always verify the digest
// afterward. Per spec.md §7, a digest mismatch is recovered once: the bad
// file is unlinked and the mirrored download retried a single time before
// the mismatch is treated as fatal. Returns nil only when the file exists
// and verifies.
func (f *Fetcher) DownloadIfMissing(
	ctx context.Context,
	repoID, rel, outPath, displayName string,
	expectedDigest string,
	kind core.DigestKind,
	expectedSize int64,
	onProgress ProgressFunc,
) error {
	const maxAttempts = 2

	if IsMissing(outPath, expectedDigest, kind, expectedSize) {
		if err := f.DownloadFromMirror(ctx, repoID, rel, outPath, displayName, onProgress); err != nil {
			return err
		}
	}

	if kind == core.DigestNone || expectedDigest == "" {
		return nil
	}

	var mismatch *core.DigestMismatchError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		actual, err := ComputeDigest(outPath, kind)
		if err != nil {
			_ = os.Remove(outPath)
			return err
		}
		if digestMatches(actual, expectedDigest) {
			return nil
		}

		_ = os.Remove(outPath)
		mismatch = &core.DigestMismatchError{Path: outPath, Expected: expectedDigest, Actual: actual}
		if attempt == maxAttempts {
			break
		}
		if err := f.DownloadFromMirror(ctx, repoID, rel, outPath, displayName, onProgress); err != nil {
			return err
		}
	}
	return mismatch
}

func truncate(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
