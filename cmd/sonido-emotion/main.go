// Package main is the entry point for the sonido-emotion CLI.
//
// Usage:
//
//	sonido-emotion [flags] <command> [args]
//
// Commands:
//
//	classify    - Classify the emotional state of an audio clip
//	signatures  - Signature tooling (export)
//	gen-audio   - Write varied tone clips for manual testing
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-emotion/cmd/sonido-emotion/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
