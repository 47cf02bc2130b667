package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	wserrors "github.com/ajitpratap0/wordsmith/pkg/errors"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed run to the process status. Reaching the memory
// ceiling exits 2 under either watchdog policy.
func exitCode(err error) int {
	if wserrors.IsType(err, wserrors.ErrorTypeResourceExhaustion) {
		return 2
	}
	return 1
}
