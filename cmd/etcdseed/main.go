// Package main is the entry point for the etcdseed CLI.
//
// etcdseed runs once on the first boot of an etcd node. It discovers the
// node's peers, joins the running cluster or founds a new one, and writes
// the environment file the etcd unit starts from.
//
// For detailed usage information, run:
//
//	etcdseed --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/etcdseed/cmd/etcdseed/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
