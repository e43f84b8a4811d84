package main

import (
	"context"
	"os"

	"github.com/iudanet/cropaid/internal/client/cli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	build := cli.BuildInfo{Version: Version, BuildDate: BuildDate, GitCommit: GitCommit}

	if err := cli.Execute(context.Background(), build, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
