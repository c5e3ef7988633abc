package main

import (
	"os"

	"github.com/wonny/hivdash/cmd/hivdash/commands"
)

// main is the entry point for the hivdash CLI
// ⭐ single entry point: go run ./cmd/hivdash [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
