package main

import (
	"github.com/spf13/cobra"

	"fluxforge/internal/ops"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Extract and create archives",
	}
	archiveCmd.AddCommand(newArchiveExtractCommand(ctx))
	archiveCmd.AddCommand(newArchiveCreateCommand(ctx))
	return archiveCmd
}

func newArchiveExtractCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract an archive into the Archives export folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			result, err := svc.ExtractArchive(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, result)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Archive password (encrypted archives are not supported)")
	return cmd
}

func newArchiveCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		name     string
		format   string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create <file>...",
		Short: "Pack files into a new archive in the Archives export folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			result, err := svc.CreateArchive(cmd.Context(), args, name, ops.ArchiveOptions{
				Format:   format,
				Password: password,
			})
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, result)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Archive file name (extension added when missing)")
	cmd.Flags().StringVarP(&format, "format", "f", "zip", "Archive format: zip or 7z")
	cmd.Flags().StringVar(&password, "password", "", "Password (not applied; the archive is written unencrypted)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
