package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fluxforge/internal/deps"
	"fluxforge/internal/preflight"
)

type statusReport struct {
	ConfigPath   string             `json:"config_path"`
	ExportRoot   string             `json:"export_root"`
	DateFolders  bool               `json:"date_folders"`
	Dependencies []deps.Status      `json:"dependencies"`
	Checks       []preflight.Result `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show export locations and external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigPath:   ctx.configPath,
				ExportRoot:   cfg.ExportSettings().Root(),
				DateFolders:  cfg.Export.DateFolders,
				Dependencies: preflight.CheckSystemDeps(cfg),
				Checks:       preflight.RunAll(cfg),
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			lines = append(lines,
				renderStatusLine("Config file", statusInfo, report.ConfigPath, colorize),
				renderStatusLine("Export root", statusInfo, report.ExportRoot, colorize),
				renderStatusLine("Date folders", statusInfo, yesNo(report.DateFolders), colorize),
				renderStatusLine("History", statusInfo, historyLabel(cfg.History.Enabled, cfg.History.Path), colorize),
				"",
			)
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(report.Dependencies, colorize)...)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Locations", colorize)...)
			lines = append(lines, checkLines(report.Checks, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func historyLabel(enabled bool, path string) string {
	if !enabled {
		return "disabled"
	}
	return path
}
