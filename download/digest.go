package download

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/mlow/low/core"
)

// Verifier computes a single digest kind over a file's contents. The shape
// (one small type per pluggable strategy, selected by a key at the call
// site) is grounded on the teacher's auth/ package, where each
// *_strategy.go file implements one core.AuthKind chosen the same way.
type Verifier interface {
	Kind() core.DigestKind
	Hash() hash.Hash
}

type md5Verifier struct{}

func (md5Verifier) Kind() core.DigestKind { return core.DigestMD5 }
func (md5Verifier) Hash() hash.Hash       { return md5.New() }

type sha1Verifier struct{}

func (sha1Verifier) Kind() core.DigestKind { return core.DigestSHA1 }
func (sha1Verifier) Hash() hash.Hash       { return sha1.New() }

type sha256Verifier struct{}

func (sha256Verifier) Kind() core.DigestKind { return core.DigestSHA256 }
func (sha256Verifier) Hash() hash.Hash       { return sha256.New() }

// verifiers is the registry keyed by core.DigestKind, per spec.md §3's
// DigestKind enumeration.
var verifiers = map[core.DigestKind]Verifier{
	core.DigestMD5:    md5Verifier{},
	core.DigestSHA1:   sha1Verifier{},
	core.DigestSHA256: sha256Verifier{},
}

// ComputeDigest hashes the file at path with the algorithm named by kind,
// returning its hex encoding. core.DigestNone always returns "".
func ComputeDigest(path string, kind core.DigestKind) (string, error) {
	if kind == core.DigestNone {
		return "", nil
	}
	verifier, ok := verifiers[kind]
	if !ok {
		return "", &core.DigestMismatchError{Path: path, Expected: string(kind), Actual: "unsupported digest kind"}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := verifier.Hash()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// digestMatches implements spec.md §4.5's missing-check comparison: a
// constant-length prefix comparison of the computed hex digest against
// expected, where expected's own length drives how many characters are
// compared. A shorter expected digest (a truncated reference value) is
// therefore a legitimate partial match, not a failure.
func digestMatches(actual, expected string) bool {
	if expected == "" {
		return true
	}
	if len(actual) < len(expected) {
		return false
	}
	return constantTimePrefixEqual(actual[:len(expected)], expected)
}

// constantTimePrefixEqual compares two equal-length strings without
// short-circuiting on the first mismatch, so digest comparison timing
// doesn't leak how many leading characters matched.
func constantTimePrefixEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
