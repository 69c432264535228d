package core

import "testing"

func TestParseDependency(t *testing.T) {
	cases := []struct {
		in   string
		want PackageDependency
	}{
		{"bash", PackageDependency{Name: "bash", Sense: SenseNone}},
		{"  bash  ", PackageDependency{Name: "bash", Sense: SenseNone}},
		{"bash = 5.2-1", PackageDependency{Name: "bash", Sense: SenseEQ, EVR: "5.2-1"}},
		{"bash>=5.2-1", PackageDependency{Name: "bash", Sense: SenseGE, EVR: "5.2-1"}},
		{"/usr/bin/bash", PackageDependency{Name: "/usr/bin/bash", Sense: SenseNone}},
	}
	for _, tc := range cases {
		got, err := ParseDependency(tc.in)
		if err != nil {
			t.Fatalf("ParseDependency(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDependency(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseDependencyErrors(t *testing.T) {
	for _, in := range []string{"", "bash ?? 1.0", "bash = 1.0 extra"} {
		if _, err := ParseDependency(in); err == nil {
			t.Fatalf("ParseDependency(%q) expected error, got nil", in)
		}
	}
}

func TestDependencyStringRoundTrip(t *testing.T) {
	cases := []string{"bash", "bash = 5.2-1", "bash >= 5.2-1", "bash < 1.0"}
	for _, s := range cases {
		dep, err := ParseDependency(s)
		if err != nil {
			t.Fatalf("ParseDependency(%q): %v", s, err)
		}
		if got := dep.String(); got != s {
			t.Fatalf("round-trip mismatch: parsed %q then serialized to %q", s, got)
		}
	}
}

func TestIsFileRequirement(t *testing.T) {
	if !(PackageDependency{Name: "/usr/bin/bash"}).IsFileRequirement() {
		t.Fatal("expected /usr/bin/bash to be a file requirement")
	}
	if (PackageDependency{Name: "bash"}).IsFileRequirement() {
		t.Fatal("expected bash not to be a file requirement")
	}
}

func TestSatisfies(t *testing.T) {
	cases := []struct {
		name             string
		required, provided PackageDependency
		want             bool
	}{
		{
			"unversioned matches any",
			PackageDependency{Name: "libc.so.6", Sense: SenseNone},
			PackageDependency{Name: "libc.so.6", Sense: SenseEQ, EVR: "2.11-1"},
			true,
		},
		{
			"name mismatch",
			PackageDependency{Name: "libc.so.6", Sense: SenseNone},
			PackageDependency{Name: "libfoo.so.1", Sense: SenseNone},
			false,
		},
		{
			"versioned satisfied by GE",
			PackageDependency{Name: "bash", Sense: SenseGE, EVR: "5.0"},
			PackageDependency{Name: "bash", Sense: SenseEQ, EVR: "5.2-1"},
			true,
		},
		{
			"versioned fails LT",
			PackageDependency{Name: "bash", Sense: SenseLT, EVR: "5.0"},
			PackageDependency{Name: "bash", Sense: SenseEQ, EVR: "5.2-1"},
			false,
		},
		{
			"unversioned provide never satisfies versioned requirement",
			PackageDependency{Name: "bash", Sense: SenseGE, EVR: "5.0"},
			PackageDependency{Name: "bash", Sense: SenseNone},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Satisfies(tc.required, tc.provided); got != tc.want {
				t.Fatalf("Satisfies(%+v, %+v) = %v, want %v", tc.required, tc.provided, got, tc.want)
			}
		})
	}
}
