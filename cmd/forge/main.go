package main

import (
	"github.com/tacogips/forge/internal/build"
	"github.com/tacogips/forge/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	build.Set(version, gitCommit, buildDate)
	cli.Execute()
}
