package command

import (
	"context"
	"path/filepath"

	gocmd "github.com/goliatone/go-command"

	"github.com/mlow/low/core"
	"github.com/mlow/low/download"
	"github.com/mlow/low/repo"
)

// Seeder resolves a bare package-name intent into an initial candidate,
// per spec.md §2; *resolver.Resolver satisfies this directly.
type Seeder interface {
	SeedInstall(ctx context.Context, name string) (*core.Package, error)
	SeedUpdate(ctx context.Context, name string) (*core.Package, error)
	SeedRemove(ctx context.Context, name string) (*core.Package, error)
}

// TransactionResolver runs the fixpoint loop of spec.md §4.7 over a
// transaction; *resolver.Resolver satisfies this directly.
type TransactionResolver interface {
	Resolve(ctx context.Context, txn *core.Transaction) error
}

// RepositoryLookup finds a repository by id for FetchCommand's task
// building; *repo.RepositorySet satisfies this directly.
type RepositoryLookup interface {
	Get(id string) (*repo.Repository, bool)
}

// FetchQueue enqueues one download per transaction member needing a
// fetch; *download.Queue satisfies this directly.
type FetchQueue interface {
	Enqueue(ctx context.Context, task download.FetchTask) error
}

type AddInstallCommand struct {
	seeder Seeder
}

func NewAddInstallCommand(seeder Seeder) *AddInstallCommand {
	return &AddInstallCommand{seeder: seeder}
}

func (c *AddInstallCommand) Execute(ctx context.Context, msg AddInstallMessage) error {
	if c == nil || c.seeder == nil {
		return commandDependencyError("command: install seeder is required")
	}
	pkg, err := c.seeder.SeedInstall(ctx, msg.Name)
	if err != nil {
		return err
	}
	msg.Txn.AddInstall(pkg)
	storeResult(ctx, pkg)
	return nil
}

type AddUpdateCommand struct {
	seeder Seeder
}

func NewAddUpdateCommand(seeder Seeder) *AddUpdateCommand {
	return &AddUpdateCommand{seeder: seeder}
}

func (c *AddUpdateCommand) Execute(ctx context.Context, msg AddUpdateMessage) error {
	if c == nil || c.seeder == nil {
		return commandDependencyError("command: update seeder is required")
	}
	pkg, err := c.seeder.SeedUpdate(ctx, msg.Name)
	if err != nil {
		return err
	}
	msg.Txn.AddUpdate(pkg)
	storeResult(ctx, pkg)
	return nil
}

type AddRemoveCommand struct {
	seeder Seeder
}

func NewAddRemoveCommand(seeder Seeder) *AddRemoveCommand {
	return &AddRemoveCommand{seeder: seeder}
}

func (c *AddRemoveCommand) Execute(ctx context.Context, msg AddRemoveMessage) error {
	if c == nil || c.seeder == nil {
		return commandDependencyError("command: remove seeder is required")
	}
	pkg, err := c.seeder.SeedRemove(ctx, msg.Name)
	if err != nil {
		return err
	}
	msg.Txn.AddRemove(pkg)
	storeResult(ctx, pkg)
	return nil
}

type ResolveCommand struct {
	resolver TransactionResolver
}

func NewResolveCommand(resolver TransactionResolver) *ResolveCommand {
	return &ResolveCommand{resolver: resolver}
}

func (c *ResolveCommand) Execute(ctx context.Context, msg ResolveMessage) error {
	if c == nil || c.resolver == nil {
		return commandDependencyError("command: resolver is required")
	}
	return c.resolver.Resolve(ctx, msg.Txn)
}

// FetchCommand queues a download for every install/update member of a
// resolved transaction that carries a location_href (spec.md §4.5); an
// installed package promoted without a replacement (spec.md §4.7.3's
// "installed already satisfies") has none and is skipped.
type FetchCommand struct {
	queue  FetchQueue
	layout *download.Layout
	repos  RepositoryLookup
}

func NewFetchCommand(queue FetchQueue, layout *download.Layout, repos RepositoryLookup) *FetchCommand {
	return &FetchCommand{queue: queue, layout: layout, repos: repos}
}

func (c *FetchCommand) Execute(ctx context.Context, msg FetchMessage) error {
	if c == nil || c.queue == nil || c.layout == nil || c.repos == nil {
		return commandDependencyError("command: fetch queue, layout, and repository lookup are required")
	}
	for _, pkg := range msg.Txn.InstallOrUpdateMembers() {
		if pkg.LocationHref == "" {
			continue
		}
		repoID := ""
		if pkg.Repository != nil {
			repoID = pkg.Repository.ID()
		}
		if _, ok := c.repos.Get(repoID); !ok {
			return commandInvalidInputError("command: unknown repository " + repoID + " for package " + pkg.NEVRA())
		}
		task := download.FetchTask{
			RepoID:         repoID,
			RelPath:        pkg.LocationHref,
			OutPath:        c.layout.PackagePath(repoID, filepath.Base(pkg.LocationHref)),
			DisplayName:    pkg.NEVRA(),
			ExpectedDigest: pkg.Digest,
			DigestKind:     string(pkg.DigestKind),
			ExpectedSize:   pkg.PackageSize,
		}
		if err := c.queue.Enqueue(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
