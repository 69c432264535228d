package download

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// MirrorBackoff bounds how long DownloadFromMirror waits between
// mark-bad-and-retry attempts against the *mirror list itself* (not a
// single URL's transport retry, which client.go already delegates to
// retryablehttp). spec.md §4.5 doesn't name a delay between mirror
// attempts, but a process looping pick-mirror/fail/mark-bad/repeat with no
// delay at all would hammer a struggling mirror set; this adds the same
// kind of small, bounded backoff the resolver's transport layer already
// gets for free from retryablehttp. Grounded on
// github.com/cenkalti/backoff/v4, carried in the dependency set this
// module was distilled from.
func newMirrorBackoff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = 0 // caller bounds attempts by mirror count, not elapsed time
	return eb
}
