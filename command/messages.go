package command

import (
	"fmt"
	"strings"

	"github.com/mlow/low/core"
)

const (
	TypeAddInstall = "low.command.add_install"
	TypeAddUpdate  = "low.command.add_update"
	TypeAddRemove  = "low.command.add_remove"
	TypeResolve    = "low.command.resolve"
	TypeFetch      = "low.command.fetch"
)

// AddInstallMessage names the package to seed into txn's install set, per
// spec.md §2's add_install intent. Txn is the in-process target
// transaction; commands in this package never look one up implicitly,
// matching spec.md §5's "single active transaction" model while still
// letting a caller juggle more than one if it needs to.
type AddInstallMessage struct {
	Txn  *core.Transaction
	Name string
}

func (AddInstallMessage) Type() string { return TypeAddInstall }

func (m AddInstallMessage) Validate() error {
	if m.Txn == nil {
		return fmt.Errorf("command: transaction is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("command: package name is required")
	}
	return nil
}

type AddUpdateMessage struct {
	Txn  *core.Transaction
	Name string
}

func (AddUpdateMessage) Type() string { return TypeAddUpdate }

func (m AddUpdateMessage) Validate() error {
	if m.Txn == nil {
		return fmt.Errorf("command: transaction is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("command: package name is required")
	}
	return nil
}

type AddRemoveMessage struct {
	Txn  *core.Transaction
	Name string
}

func (AddRemoveMessage) Type() string { return TypeAddRemove }

func (m AddRemoveMessage) Validate() error {
	if m.Txn == nil {
		return fmt.Errorf("command: transaction is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("command: package name is required")
	}
	return nil
}

// ResolveMessage requests the fixpoint resolution of spec.md §4.7 over Txn.
type ResolveMessage struct {
	Txn *core.Transaction
}

func (ResolveMessage) Type() string { return TypeResolve }

func (m ResolveMessage) Validate() error {
	if m.Txn == nil {
		return fmt.Errorf("command: transaction is required")
	}
	return nil
}

// FetchMessage requests that every install/update member of Txn missing
// from local cache be queued for a mirrored download, per spec.md §4.5.
type FetchMessage struct {
	Txn *core.Transaction
}

func (FetchMessage) Type() string { return TypeFetch }

func (m FetchMessage) Validate() error {
	if m.Txn == nil {
		return fmt.Errorf("command: transaction is required")
	}
	return nil
}
