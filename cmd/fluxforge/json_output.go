package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"fluxforge/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders an operation result as JSON or human-readable lines.
func printResult(cmd *cobra.Command, ctx *commandContext, result services.ConvertResult) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Message)
	if result.OutputFolder != "" {
		fmt.Fprintf(out, "Output folder: %s\n", result.OutputFolder)
	}
	for _, file := range result.OutputFiles {
		fmt.Fprintf(out, "  %s\n", file)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	return nil
}
