package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fluxforge/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// printError writes "error: <kind>: <message>" for classified failures and
// "error: <message>" otherwise.
func printError(w io.Writer, err error) {
	kind := services.KindOf(err)
	if kind == "" || kind == services.KindInternal {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "error: %s: %v\n", kind, err)
}
