package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/mlow/low/core"
)

var (
	_ gocmd.Querier[ListAllMessage, []*core.Package]                = (*ListAllQuery)(nil)
	_ gocmd.Querier[ListByNameMessage, []*core.Package]             = (*ListByNameQuery)(nil)
	_ gocmd.Querier[SearchProvidesMessage, []*core.Package]         = (*SearchProvidesQuery)(nil)
	_ gocmd.Querier[SearchRequiresMessage, []*core.Package]         = (*SearchRequiresQuery)(nil)
	_ gocmd.Querier[SearchConflictsMessage, []*core.Package]        = (*SearchConflictsQuery)(nil)
	_ gocmd.Querier[SearchObsoletesMessage, []*core.Package]        = (*SearchObsoletesQuery)(nil)
	_ gocmd.Querier[SearchFilesMessage, []*core.Package]            = (*SearchFilesQuery)(nil)
	_ gocmd.Querier[SearchDetailsMessage, []*core.Package]          = (*SearchDetailsQuery)(nil)
	_ gocmd.Querier[TransactionSnapshotMessage, TransactionSnapshot] = (*TransactionSnapshotQuery)(nil)
)
