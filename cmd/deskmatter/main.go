// Package main provides the entry point for deskmatter.
//
// deskmatter is the local HTTP service behind the desktop app: it stores
// matters, tags, todos, repeat tasks, notifications and settings, and
// drives the tray attention indicator.
//
// Usage:
//
//	deskmatter serve [--config path] [--port n]
//	deskmatter version
package main

import (
	"fmt"
	"os"
)

// Version information set during build time
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
