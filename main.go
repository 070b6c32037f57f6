// ./main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/xkilldash9x/scalpel-e2e/cmd"
)

const panicLogFile = "panic.log"

// Replaced in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

// main is the entry point for the scalpel-e2e harness.
func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			osExit(130)
			return
		}
		osExit(1)
	}
}

// handlePanic records an unrecovered panic with its stack in panicLogFile.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
	} else {
		fmt.Fprintf(os.Stderr, "Unexpected crash. Details logged to %s\n", panicLogFile)
	}
	osExit(2)
}
