// Command mercha drives the digest pipeline from a metafile: verify checks
// a file's digest against the metafile's recorded result, gen writes a
// fresh LCG-generated input file for a metafile that doesn't have one yet.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/go-mercha/mercha/cmd/mercha/internal/run"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mercha: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run.NewRootCommand(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
