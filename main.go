// Package main implements dagger-auto, a binding compiler for Dagger.
//
// dagger-auto reads binding declarations, groups them into modules per
// package and generates the Dagger source wiring them. Encapsulated modules
// hide their bindings behind a private component; aggregation points still
// cross that boundary in both directions.
//
// Generation flow:
//
//  1. Find .dagger-auto.yaml → project root and configuration
//  2. Scan the given directories for *.dagger.yaml / *.dagger.toml
//  3. Resolve supertypes, keys and injections → modules
//  4. Compile modules → Dagger modules, components and wrappers
//  5. Write changed sources below the output root
//
// Usage:
//
//	dagger-auto generate src/main/dagger
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// version is set via -ldflags.
var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
