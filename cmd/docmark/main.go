package main

import (
	"os"

	"github.com/goliatone/go-docmark/cmd/docmark/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	os.Exit(commands.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
