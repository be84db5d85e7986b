// Command alhost hosts the OS capability layer, event-queue-driven
// network abstraction, and IP client/server behind a read-only admin
// API and optional Prometheus metrics.
package main

import (
	"fmt"
	"os"

	"github.com/benhaub/abstractionlayer/cmd/alhost/commands"
)

// Build-time variables injected via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
