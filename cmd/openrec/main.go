// Package main provides the entry point for the openrec CLI tool.
package main

import "github.com/openrec/openrec/cmd/openrec/cmd"

// Version information populated by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
