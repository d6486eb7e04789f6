package main

import (
	"github.com/robotalks/multisensor/pkg/cli/sh"
	"github.com/robotalks/multisensor/pkg/sensor/board"

	_ "github.com/robotalks/multisensor/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	sh.SetupFlags()
	board.SetupFlags()
}

func main() {
	sh.Main()
}
