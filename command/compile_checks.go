package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AddInstallMessage] = (*AddInstallCommand)(nil)
	_ gocmd.Commander[AddUpdateMessage]  = (*AddUpdateCommand)(nil)
	_ gocmd.Commander[AddRemoveMessage]  = (*AddRemoveCommand)(nil)
	_ gocmd.Commander[ResolveMessage]    = (*ResolveCommand)(nil)
	_ gocmd.Commander[FetchMessage]      = (*FetchCommand)(nil)
)
