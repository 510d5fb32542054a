// Package main provides the entry point for the luna CLI.
package main

import (
	"context"
	"os"

	"github.com/lunacore/luna/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"     //nolint:gochecknoglobals // ldflags
	commit  = "none"    //nolint:gochecknoglobals // ldflags
	date    = "unknown" //nolint:gochecknoglobals // ldflags
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
