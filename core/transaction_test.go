package core

import "testing"

type stubRepo struct{ id string }

func (s stubRepo) ID() string { return s.id }

type stubSetView struct{ n int }

func (s stubSetView) Len() int { return s.n }

func newTestTransaction() *Transaction {
	return NewTransaction(stubRepo{id: "installed"}, stubSetView{}, nil)
}

func TestTransactionAddInstallIdempotent(t *testing.T) {
	txn := newTestTransaction()
	pkg := NewPackage("hello", 0, "1.0", "1", "x86_64")

	if got := txn.AddInstall(pkg); got != Added {
		t.Fatalf("first AddInstall = %v, want Added", got)
	}
	if got := txn.AddInstall(pkg); got != AlreadyPresent {
		t.Fatalf("second AddInstall = %v, want AlreadyPresent", got)
	}
	if len(txn.Install()) != 1 {
		t.Fatalf("expected install set to stay at one member, got %d", len(txn.Install()))
	}
}

func TestTransactionAddRemoveIdempotent(t *testing.T) {
	txn := newTestTransaction()
	pkg := NewPackage("hello", 0, "1.0", "1", "x86_64")

	if got := txn.AddRemove(pkg); got != Added {
		t.Fatalf("first AddRemove = %v, want Added", got)
	}
	if got := txn.AddRemove(pkg); got != AlreadyPresent {
		t.Fatalf("second AddRemove = %v, want AlreadyPresent", got)
	}
}

func TestTransactionPairUpdateAndPromote(t *testing.T) {
	txn := newTestTransaction()
	newer := NewPackage("hello", 0, "2.0", "1", "x86_64")
	older := NewPackage("hello", 0, "1.0", "1", "x86_64")

	txn.AddUpdate(newer)
	txn.PairUpdate(newer, older)

	updates := txn.Update()
	if len(updates) != 1 || updates[0].RelatedPkg != older {
		t.Fatalf("expected newer paired with older, got %+v", updates)
	}
	updated := txn.Updated()
	if len(updated) != 1 || updated[0] != older {
		t.Fatalf("expected updated set to contain older, got %+v", updated)
	}

	solo := NewPackage("standalone", 0, "1.0", "1", "x86_64")
	txn.AddUpdate(solo)
	txn.PromoteUpdateToInstall(solo)

	if len(txn.Update()) != 1 {
		t.Fatalf("expected solo removed from update set, got %d members", len(txn.Update()))
	}
	foundInstall := false
	for _, p := range txn.Install() {
		if p == solo {
			foundInstall = true
		}
	}
	if !foundInstall {
		t.Fatal("expected solo promoted into install set")
	}
}

func TestTransactionMarkUnresolved(t *testing.T) {
	txn := newTestTransaction()
	pkg := NewPackage("hello", 0, "1.0", "1", "x86_64")
	txn.AddInstall(pkg)

	txn.MarkUnresolved(pkg, ReasonMissingRequires, nil)

	if len(txn.Install()) != 0 {
		t.Fatalf("expected install set empty after MarkUnresolved, got %d", len(txn.Install()))
	}
	unresolved := txn.Unresolved()
	if len(unresolved) != 1 || unresolved[0].Package != pkg || unresolved[0].Reason != ReasonMissingRequires {
		t.Fatalf("unexpected unresolved entries: %+v", unresolved)
	}
}

func TestTransactionDisjoint(t *testing.T) {
	txn := newTestTransaction()
	install := NewPackage("a", 0, "1.0", "1", "x86_64")
	remove := NewPackage("b", 0, "1.0", "1", "x86_64")

	txn.AddInstall(install)
	txn.AddRemove(remove)

	if !txn.Disjoint() {
		t.Fatal("expected disjoint sets to report Disjoint() == true")
	}
}

func TestTransactionSizeDelta(t *testing.T) {
	txn := newTestTransaction()
	install := NewPackage("a", 0, "1.0", "1", "x86_64")
	install.PackageSize = 100
	remove := NewPackage("b", 0, "1.0", "1", "x86_64")
	remove.InstalledSize = 40

	txn.AddInstall(install)
	txn.AddRemove(remove)

	if got := txn.SizeDelta(); got != 60 {
		t.Fatalf("SizeDelta() = %d, want 60", got)
	}
}

func TestTransactionFreeClearsState(t *testing.T) {
	txn := newTestTransaction()
	txn.AddInstall(NewPackage("a", 0, "1.0", "1", "x86_64"))
	txn.AddRemove(NewPackage("b", 0, "1.0", "1", "x86_64"))

	txn.Free()

	if len(txn.Install()) != 0 || len(txn.Remove()) != 0 {
		t.Fatal("expected Free to clear install/remove sets")
	}
}

func TestTransactionProgressCallback(t *testing.T) {
	var steps []string
	txn := NewTransaction(stubRepo{id: "installed"}, stubSetView{}, func(step int, detail string) {
		steps = append(steps, detail)
	})
	txn.AddInstall(NewPackage("a", 0, "1.0", "1", "x86_64"))
	txn.AddRemove(NewPackage("b", 0, "1.0", "1", "x86_64"))

	if len(steps) != 2 {
		t.Fatalf("expected two progress callbacks, got %d: %v", len(steps), steps)
	}
}
