// Command autobib is the thin CLI wiring around the core packages:
// the record store, the codec, the identifier model, the provider
// registry, and the resolution pipeline (spec.md §1's "explicitly out
// of scope... CLI surface" collaborator, carried here per the
// ambient-stack rule). It contains no resolution, codec, or
// state-machine logic of its own. Grounded on the teacher's
// one-command-per-file cmd/bd layout.
package main

import (
	"fmt"
	"os"

	"github.com/autobib/autobib/internal/config"
)

// Version is the build version string, overridable via -ldflags as
// the teacher does for cmd/bd.
var Version = "dev"

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(Execute())
}
