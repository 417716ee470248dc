// Command oonkoo is the OonkoO component CLI.
//
// Exit codes:
//
//	0  success
//	1  generic failure
//	2  dependency resolution failed (cycle, unknown component, graph too large)
//	3  registry unreachable
//	4  browser sign-in timed out
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oonkoo/oonkoo-registry/cmd/commands"
	"github.com/oonkoo/oonkoo-registry/internal/cliauth"
	"github.com/oonkoo/oonkoo-registry/internal/registry"
	"github.com/oonkoo/oonkoo-registry/internal/resolver"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	exitOK          = 0
	exitGeneric     = 1
	exitResolution  = 2
	exitUnavailable = 3
	exitAuthTimeout = 4
)

func main() {
	root := commands.NewRootCommand(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}

// exitCode maps sentinel errors to documented exit codes so scripts can
// distinguish "fix your component list" from "try again later".
func exitCode(err error) int {
	var cycleErr *resolver.CycleError
	var missingErr *resolver.MissingError
	switch {
	case errors.As(err, &cycleErr),
		errors.As(err, &missingErr),
		errors.Is(err, resolver.ErrTooManyComponents):
		return exitResolution
	case errors.Is(err, registry.ErrRegistryUnavailable):
		return exitUnavailable
	case errors.Is(err, cliauth.ErrAuthTimeout):
		return exitAuthTimeout
	default:
		return exitGeneric
	}
}
