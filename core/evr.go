package core

import (
	"strconv"
	"strings"
)

// EVR is a parsed epoch-version-release triple, as described in spec §4.1.
type EVR struct {
	Epoch   int
	Version string
	Release string
}

// ParseEVR parses "[epoch:]version[-release]". Epoch defaults to 0 when
// absent. An empty input parses to the zero EVR (epoch 0, empty version and
// release), which CompareEVR treats as equal to any other empty EVR.
func ParseEVR(s string) EVR {
	epoch := 0
	rest := s
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		if n, err := strconv.Atoi(s[:idx]); err == nil {
			epoch = n
		}
		rest = s[idx+1:]
	}
	version := rest
	release := ""
	if idx := strings.LastIndexByte(rest, '-'); idx >= 0 {
		version = rest[:idx]
		release = rest[idx+1:]
	}
	return EVR{Epoch: epoch, Version: version, Release: release}
}

// String renders the canonical "[epoch:]version[-release]" form. Epoch 0 is
// still emitted with its colon only when the original carried one; callers
// that build an EVR programmatically get the compact form.
func (e EVR) String() string {
	var b strings.Builder
	if e.Epoch != 0 {
		b.WriteString(strconv.Itoa(e.Epoch))
		b.WriteByte(':')
	}
	b.WriteString(e.Version)
	if e.Release != "" {
		b.WriteByte('-')
		b.WriteString(e.Release)
	}
	return b.String()
}

// CompareEVR compares two EVR strings per spec §4.1: epochs numerically
// first, then version and release with the RPM segment comparator. Returns
// -1, 0, or +1.
func CompareEVR(a, b string) int {
	ea, eb := ParseEVR(a), ParseEVR(b)
	if ea.Epoch != eb.Epoch {
		if ea.Epoch < eb.Epoch {
			return -1
		}
		return 1
	}
	if c := compareSegment(ea.Version, eb.Version); c != 0 {
		return c
	}
	// Spec §4.1: "absent release compares equal to any release."
	if ea.Release == "" || eb.Release == "" {
		return 0
	}
	return compareSegment(ea.Release, eb.Release)
}

// CompareEVRValues is the EVR-struct equivalent of CompareEVR, avoiding a
// re-parse when callers already hold parsed EVRs (e.g. best-candidate
// selection scanning many packages of the same name).
func CompareEVRValues(a, b EVR) int {
	return CompareEVR(a.String(), b.String())
}

// compareSegment implements RPM's version/release token comparator: split
// into maximal runs of digits and maximal runs of letters, compare digit
// runs numerically (leading zeros ignored, longer non-zero run wins ties),
// compare letter runs lexicographically, numeric outranks alphabetic, and a
// leading '~' sorts before everything else (pre-release marker).
func compareSegment(a, b string) int {
	for len(a) > 0 || len(b) > 0 {
		// Tilde sorts before everything, including the end of string.
		aTilde := len(a) > 0 && a[0] == '~'
		bTilde := len(b) > 0 && b[0] == '~'
		if aTilde || bTilde {
			if aTilde && !bTilde {
				return -1
			}
			if !aTilde && bTilde {
				return 1
			}
			a, b = a[1:], b[1:]
			continue
		}

		// Strip any non-alphanumeric separators from both sides.
		a = stripSeparators(a)
		b = stripSeparators(b)

		if len(a) == 0 && len(b) == 0 {
			return 0
		}
		if len(a) == 0 {
			return -1
		}
		if len(b) == 0 {
			return 1
		}

		if isDigit(a[0]) && isDigit(b[0]) {
			var na, ra string
			na, a = takeWhile(a, isDigit)
			ra, b = takeWhile(b, isDigit)
			if c := compareNumeric(na, ra); c != 0 {
				return c
			}
			continue
		}
		if isDigit(a[0]) != isDigit(b[0]) {
			// A numeric run outranks an alphabetic one (spec §4.1).
			if isDigit(a[0]) {
				return 1
			}
			return -1
		}

		var sa, sb string
		sa, a = takeWhile(a, isAlpha)
		sb, b = takeWhile(b, isAlpha)
		if sa != sb {
			if sa < sb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func stripSeparators(s string) string {
	i := 0
	for i < len(s) && !isAlnum(s[i]) && s[i] != '~' {
		i++
	}
	return s[i:]
}

func takeWhile(s string, pred func(byte) bool) (taken, rest string) {
	i := 0
	for i < len(s) && pred(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }

// compareNumeric compares two digit runs numerically, ignoring leading
// zeros; if both trim to the same magnitude the longer original run (more
// leading zeros stripped away from the shorter one) wins, matching RPM's
// "longer non-zero wins" rule applied after zero-stripping.
func compareNumeric(a, b string) int {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if ta < tb {
		return -1
	}
	if ta > tb {
		return 1
	}
	return 0
}
