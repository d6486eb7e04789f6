package all

import (
	// register all commands
	_ "github.com/robotalks/multisensor/pkg/cli/cmds/board"
	_ "github.com/robotalks/multisensor/pkg/cli/cmds/config"
)
