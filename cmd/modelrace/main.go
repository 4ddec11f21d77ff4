package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/modelrace/modelrace/internal/posterior"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Analysis completed
	ExitUnreliable = 1 // Posterior comparison completed but diagnostics failed
	ExitError      = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Convergence failures still produce output; signal them
		// distinctly so CI can tell "unreliable" from "broken".
		var convErr *posterior.ConvergenceError
		if errors.As(err, &convErr) {
			os.Exit(ExitUnreliable)
		}

		os.Exit(ExitError)
	}
}
