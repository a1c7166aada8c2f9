// Package main is the entry point for the deploynet CLI.
//
// deploynet provisions Hetzner Cloud instances for a Starknet consensus
// interop network and deploys each team's validator and boot node
// containers onto them. Node descriptors and per-team runtime configs
// are declarative; both deployment stages are idempotent and can be
// re-run at any point.
//
// Commands: deploy, compose, validate, merge, version.
//
// For detailed usage information, run:
//
//	deploynet --help
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/eqlabs/starknet-consensus-interop/cmd/deploynet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Credentials may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
