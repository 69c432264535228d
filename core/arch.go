package core

// Arch is an RPM-style machine architecture tag, e.g. "x86_64" or "noarch".
type Arch string

const (
	ArchNoarch Arch = "noarch"
)

// archCompat maps a host architecture to the list of architectures that can
// be installed on it, in preference order (most preferred first). noarch is
// appended to every list since it is always installable, but never
// preferred over a native arch (spec §4.1).
var archCompat = map[Arch][]Arch{
	"x86_64":  {"x86_64", "i686", "i586", "i486", "i386", "noarch"},
	"i686":    {"i686", "i586", "i486", "i386", "noarch"},
	"i586":    {"i586", "i486", "i386", "noarch"},
	"i486":    {"i486", "i386", "noarch"},
	"i386":    {"i386", "noarch"},
	"aarch64": {"aarch64", "noarch"},
	"armv7hl": {"armv7hl", "armv6hl", "noarch"},
	"armv6hl": {"armv6hl", "noarch"},
	"ppc64le": {"ppc64le", "noarch"},
	"ppc64":   {"ppc64", "noarch"},
	"s390x":   {"s390x", "noarch"},
	"noarch":  {"noarch"},
}

// InstallableArches returns the architectures installable on hostArch, in
// preference order. An unknown hostArch can still install noarch and
// itself.
func InstallableArches(hostArch Arch) []Arch {
	if list, ok := archCompat[hostArch]; ok {
		return list
	}
	return []Arch{hostArch, ArchNoarch}
}

// IsInstallable reports whether candidate can be installed on hostArch.
func IsInstallable(hostArch, candidate Arch) bool {
	for _, a := range InstallableArches(hostArch) {
		if a == candidate {
			return true
		}
	}
	return false
}

// preferenceRank returns the index of arch within hostArch's installable
// list (lower is more preferred), or len(list) if arch is not installable
// at all (least preferred, used only as a last-resort tiebreak).
func preferenceRank(hostArch, arch Arch) int {
	list := InstallableArches(hostArch)
	for i, a := range list {
		if a == arch {
			return i
		}
	}
	return len(list)
}

// ChooseBestForSystem returns -1 if a is preferred over b, +1 if b is
// preferred over a, 0 if they are equally preferred, when installing on
// hostArch. noarch is always installable but never outranks a native arch
// (spec §4.1).
func ChooseBestForSystem(hostArch, a, b Arch) int {
	ra, rb := preferenceRank(hostArch, a), preferenceRank(hostArch, b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}
