package query

import (
	"fmt"
	"strings"

	"github.com/mlow/low/core"
)

// Scope selects which side of spec.md §4.3's query surface a message
// targets: the single installed repository, or the union of every
// enabled available repository (spec.md §4.4).
type Scope string

const (
	ScopeInstalled Scope = "installed"
	ScopeAvailable Scope = "available"
)

func (s Scope) validate() error {
	switch s {
	case ScopeInstalled, ScopeAvailable:
		return nil
	default:
		return fmt.Errorf("query: scope must be %q or %q, got %q", ScopeInstalled, ScopeAvailable, s)
	}
}

const (
	TypeListAll             = "low.query.list_all"
	TypeListByName          = "low.query.list_by_name"
	TypeSearchProvides      = "low.query.search_provides"
	TypeSearchRequires      = "low.query.search_requires"
	TypeSearchConflicts     = "low.query.search_conflicts"
	TypeSearchObsoletes     = "low.query.search_obsoletes"
	TypeSearchFiles         = "low.query.search_files"
	TypeSearchDetails       = "low.query.search_details"
	TypeTransactionSnapshot = "low.query.transaction_snapshot"
)

type ListAllMessage struct {
	Scope Scope
}

func (ListAllMessage) Type() string { return TypeListAll }

func (m ListAllMessage) Validate() error { return m.Scope.validate() }

type ListByNameMessage struct {
	Scope Scope
	Name  string
}

func (ListByNameMessage) Type() string { return TypeListByName }

func (m ListByNameMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("query: name is required")
	}
	return nil
}

type SearchProvidesMessage struct {
	Scope Scope
	Dep   core.PackageDependency
}

func (SearchProvidesMessage) Type() string { return TypeSearchProvides }

func (m SearchProvidesMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Dep.Name) == "" {
		return fmt.Errorf("query: dependency name is required")
	}
	return nil
}

type SearchRequiresMessage struct {
	Scope Scope
	Dep   core.PackageDependency
}

func (SearchRequiresMessage) Type() string { return TypeSearchRequires }

func (m SearchRequiresMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Dep.Name) == "" {
		return fmt.Errorf("query: dependency name is required")
	}
	return nil
}

type SearchConflictsMessage struct {
	Scope Scope
	Dep   core.PackageDependency
}

func (SearchConflictsMessage) Type() string { return TypeSearchConflicts }

func (m SearchConflictsMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Dep.Name) == "" {
		return fmt.Errorf("query: dependency name is required")
	}
	return nil
}

type SearchObsoletesMessage struct {
	Scope Scope
	Dep   core.PackageDependency
}

func (SearchObsoletesMessage) Type() string { return TypeSearchObsoletes }

func (m SearchObsoletesMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Dep.Name) == "" {
		return fmt.Errorf("query: dependency name is required")
	}
	return nil
}

type SearchFilesMessage struct {
	Scope Scope
	Path  string
}

func (SearchFilesMessage) Type() string { return TypeSearchFiles }

func (m SearchFilesMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Path) == "" {
		return fmt.Errorf("query: path is required")
	}
	return nil
}

type SearchDetailsMessage struct {
	Scope     Scope
	Substring string
}

func (SearchDetailsMessage) Type() string { return TypeSearchDetails }

func (m SearchDetailsMessage) Validate() error {
	if err := m.Scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Substring) == "" {
		return fmt.Errorf("query: substring is required")
	}
	return nil
}

// TransactionSnapshotMessage carries no fields: the transaction it reads is
// wired into TransactionSnapshotQuery at construction time, matching
// spec.md §5's single active transaction per session.
type TransactionSnapshotMessage struct{}

func (TransactionSnapshotMessage) Type() string { return TypeTransactionSnapshot }

func (TransactionSnapshotMessage) Validate() error { return nil }
