// Package low is the root of this module: it wires the resolver,
// repository set, and download queue into the command/query surface
// spec.md's [MODULE] blocks describe, the way the teacher's facade.go
// bundles its services/command/query packages behind one entry point.
package low

import (
	"context"
	"fmt"

	"github.com/mlow/low/adapters/gocommand"
	"github.com/mlow/low/command"
	"github.com/mlow/low/core"
	"github.com/mlow/low/download"
	"github.com/mlow/low/query"
	"github.com/mlow/low/repo"
	"github.com/mlow/low/resolver"
)

// subscription is the Unsubscribe contract commanddispatcher.Subscription
// satisfies; named locally so facade.go doesn't need to import
// go-command/dispatcher just to spell the field type.
type subscription interface {
	Unsubscribe()
}

// packageReader adapts one installed repository and one available
// repository set into query.PackageReader, so query handlers never see
// *repo.Repository/*repo.RepositorySet directly.
type packageReader struct {
	installed *repo.Repository
	available *repo.RepositorySet
}

func (r packageReader) Installed() repo.Backend {
	if r.installed == nil {
		return nil
	}
	return r.installed.Backend()
}

func (r packageReader) Available() *repo.RepositorySet {
	return r.available
}

var _ query.PackageReader = packageReader{}

// Commands bundles every command.Commander this module exposes, built
// once at facade construction and reused across transactions.
type Commands struct {
	AddInstall *command.AddInstallCommand
	AddUpdate  *command.AddUpdateCommand
	AddRemove  *command.AddRemoveCommand
	Resolve    *command.ResolveCommand
	Fetch      *command.FetchCommand
}

// Queries bundles every query.Querier this module exposes, scoped to one
// installed repository and one available repository set.
type Queries struct {
	ListAll         *query.ListAllQuery
	ListByName      *query.ListByNameQuery
	SearchProvides  *query.SearchProvidesQuery
	SearchRequires  *query.SearchRequiresQuery
	SearchConflicts *query.SearchConflictsQuery
	SearchObsoletes *query.SearchObsoletesQuery
	SearchFiles     *query.SearchFilesQuery
	SearchDetails   *query.SearchDetailsQuery
}

// Facade is the single entry point a caller (a CLI command, a REPL) uses
// to drive a dependency resolution session, per spec.md §5's "one active
// transaction at a time" model: one Facade holds one Installed repository
// and one Available repository set, and hands out a fresh
// TransactionSnapshotQuery per transaction it starts.
type Facade struct {
	installed *repo.Repository
	available *repo.RepositorySet
	resolver  *resolver.Resolver
	commands  Commands
	queries   Queries

	bus           *gocommand.RegistryAdapter
	subscriptions []subscription
}

// Option customizes Facade construction, matching the teacher's
// FacadeOption builder shape.
type Option func(*options)

type options struct {
	queue  command.FetchQueue
	layout *download.Layout
}

// WithFetchQueue wires a download queue and on-disk layout into the
// facade's FetchCommand; a Facade built without this option cannot queue
// downloads (its FetchCommand field stays nil).
func WithFetchQueue(queue command.FetchQueue, layout *download.Layout) Option {
	return func(o *options) {
		o.queue = queue
		o.layout = layout
	}
}

// NewFacade wires a resolver.Resolver (which already holds the installed
// repository, available repository set, host arch, and package cache) into
// a full command/query surface.
func NewFacade(r *resolver.Resolver, opts ...Option) (*Facade, error) {
	if r == nil {
		return nil, fmt.Errorf("low: resolver is required")
	}
	if r.Installed == nil {
		return nil, fmt.Errorf("low: resolver.Installed is required")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := packageReader{installed: r.Installed, available: r.Available}

	f := &Facade{
		installed: r.Installed,
		available: r.Available,
		resolver:  r,
	}
	f.commands = Commands{
		AddInstall: command.NewAddInstallCommand(r),
		AddUpdate:  command.NewAddUpdateCommand(r),
		AddRemove:  command.NewAddRemoveCommand(r),
		Resolve:    command.NewResolveCommand(r),
	}
	if cfg.queue != nil && cfg.layout != nil {
		f.commands.Fetch = command.NewFetchCommand(cfg.queue, cfg.layout, r.Available)
	}
	f.queries = Queries{
		ListAll:         query.NewListAllQuery(reader),
		ListByName:      query.NewListByNameQuery(reader),
		SearchProvides:  query.NewSearchProvidesQuery(reader),
		SearchRequires:  query.NewSearchRequiresQuery(reader),
		SearchConflicts: query.NewSearchConflictsQuery(reader),
		SearchObsoletes: query.NewSearchObsoletesQuery(reader),
		SearchFiles:     query.NewSearchFilesQuery(reader),
		SearchDetails:   query.NewSearchDetailsQuery(reader),
	}

	if err := f.wireBus(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// wireBus registers every Commander/Querier this Facade owns with a
// gocommand.RegistryAdapter and subscribes each to the go-command dispatch
// bus, mirroring the teacher's compatibility_integration_test.go usage of
// adapters/gocommand: Dispatch/Query route a message to its handler by
// Type() rather than the caller holding a direct reference to the
// Commander. TransactionSnapshotQuery is deliberately excluded: it's built
// fresh per NewTransaction call bound to one *core.Transaction, and the
// bus dispatches by message type alone, so registering one instance per
// transaction would fight over the same subscription.
func (f *Facade) wireBus() error {
	f.bus = gocommand.NewRegistryAdapter(nil)

	register := func(sub any, err error) error {
		if err != nil {
			return err
		}
		if s, ok := sub.(subscription); ok {
			f.subscriptions = append(f.subscriptions, s)
		}
		return nil
	}

	if err := register(gocommand.RegisterAndSubscribe(f.bus, f.commands.AddInstall)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribe(f.bus, f.commands.AddUpdate)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribe(f.bus, f.commands.AddRemove)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribe(f.bus, f.commands.Resolve)); err != nil {
		return err
	}
	if f.commands.Fetch != nil {
		if err := register(gocommand.RegisterAndSubscribe(f.bus, f.commands.Fetch)); err != nil {
			return err
		}
	}

	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.ListAll)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.ListByName)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchProvides)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchRequires)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchConflicts)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchObsoletes)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchFiles)); err != nil {
		return err
	}
	if err := register(gocommand.RegisterAndSubscribeQuery(f.bus, f.queries.SearchDetails)); err != nil {
		return err
	}

	return f.bus.Initialize()
}

// Close unsubscribes this Facade's commands and queries from the shared
// go-command dispatch bus. Callers that construct a Facade for the
// lifetime of a process don't need to call this; callers that build many
// short-lived Facades (tests in particular) must, since the bus resolves
// a message's handler by Type() alone and a stale subscription would
// shadow or collide with the next Facade's.
func (f *Facade) Close() {
	if f == nil {
		return
	}
	for _, sub := range f.subscriptions {
		sub.Unsubscribe()
	}
	f.subscriptions = nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

// NewTransaction starts a fresh resolution session, pairing it with a
// TransactionSnapshotQuery that reads back its five membership sets.
func (f *Facade) NewTransaction(onProgress core.ProgressFunc) (*core.Transaction, *query.TransactionSnapshotQuery) {
	txn := core.NewTransaction(f.installed, f.available, onProgress)
	return txn, query.NewTransactionSnapshotQuery(txn)
}

var _ command.Seeder = (*resolver.Resolver)(nil)
var _ command.TransactionResolver = (*resolver.Resolver)(nil)
