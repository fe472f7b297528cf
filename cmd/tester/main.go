package main

import (
	"github.com/robotalks/serialproto/pkg/cli/sh"
	"github.com/robotalks/serialproto/pkg/host"

	_ "github.com/robotalks/serialproto/pkg/cli/cmds/protocol"
)

//go-build: CGO_ENABLED=0

func init() {
	host.SetupFlags()
}

func main() {
	sh.Main()
}
