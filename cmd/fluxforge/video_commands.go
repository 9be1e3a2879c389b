package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fluxforge/internal/video"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Inspect video files",
	}
	videoCmd.AddCommand(&cobra.Command{
		Use:   "info <file>",
		Short: "Show duration, resolution and frame rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			info, err := svc.GetVideoInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, info)
			}
			rows := [][]string{
				{"Path", info.Path},
				{"Duration", formatSecondsLabel(info.DurationSeconds)},
				{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
				{"Frame rate", strconv.FormatFloat(info.FPS, 'f', 2, 64) + " fps"},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Property", "Value"}, rows, nil))
			return nil
		},
	})
	return videoCmd
}

type gifFlags struct {
	start   float64
	end     float64
	width   int
	height  int
	fps     int
	quality int
	name    string
}

func (f *gifFlags) register(cmd *cobra.Command, withName bool) {
	cmd.Flags().Float64Var(&f.start, "start", 0, "Start time in seconds")
	cmd.Flags().Float64Var(&f.end, "end", 0, "End time in seconds (default: end of video)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Output width in pixels (default: source width)")
	cmd.Flags().IntVar(&f.height, "height", 0, "Output height in pixels (default: source height)")
	cmd.Flags().IntVar(&f.fps, "fps", 10, "Output frame rate")
	cmd.Flags().IntVar(&f.quality, "quality", 3, "Quality tier 1 (smallest) to 5 (best)")
	if withName {
		cmd.Flags().StringVarP(&f.name, "name", "n", "", "Output file name (default: source name)")
	}
}

// options builds GifOptions, filling the window end and dimensions from the
// probed source when they were not given.
func (f *gifFlags) options(cmd *cobra.Command, ctx *commandContext, path string) (video.GifOptions, error) {
	opts := video.GifOptions{
		StartTime:  f.start,
		EndTime:    f.end,
		Width:      f.width,
		Height:     f.height,
		FPS:        f.fps,
		Quality:    f.quality,
		OutputName: f.name,
	}
	if opts.EndTime > 0 && opts.Width > 0 && opts.Height > 0 {
		return opts, nil
	}
	svc, err := ctx.service()
	if err != nil {
		return opts, err
	}
	info, err := svc.GetVideoInfo(cmd.Context(), path)
	if err != nil {
		return opts, err
	}
	if !cmd.Flags().Changed("end") {
		opts.EndTime = info.DurationSeconds
	}
	if opts.Width <= 0 && opts.Height <= 0 {
		opts.Width, opts.Height = info.Width, info.Height
	} else if opts.Width <= 0 {
		opts.Width = scaleDimension(info.Width, info.Height, opts.Height)
	} else if opts.Height <= 0 {
		opts.Height = scaleDimension(info.Height, info.Width, opts.Width)
	}
	return opts, nil
}

// scaleDimension keeps the source aspect ratio: it returns the value for one
// axis given the requested size of the other.
func scaleDimension(axis, other, requested int) int {
	if other <= 0 {
		return requested
	}
	return max(1, int(float64(axis)*float64(requested)/float64(other)+0.5))
}

func newGifCommand(ctx *commandContext) *cobra.Command {
	gifCmd := &cobra.Command{
		Use:   "gif",
		Short: "Estimate and create animated GIFs from video",
	}

	var estimateFlags gifFlags
	estimateCmd := &cobra.Command{
		Use:   "estimate <video>",
		Short: "Estimate the GIF size (advisory)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := estimateFlags.options(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			estimate := svc.EstimateGifSize(cmd.Context(), args[0], opts)
			if ctx.jsonMode() {
				return writeJSON(cmd, estimate)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Estimated size: ~%.1f MB (estimate)\n", estimate.EstimatedSizeMB)
			fmt.Fprintf(out, "Frames: %d over %s at %dx%d\n", estimate.FrameCount, formatSecondsLabel(estimate.DurationSeconds), opts.Width, opts.Height)
			return nil
		},
	}
	estimateFlags.register(estimateCmd, false)

	var convertFlags gifFlags
	convertCmd := &cobra.Command{
		Use:   "convert <video>",
		Short: "Convert a video clip to an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := convertFlags.options(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service()
			if err != nil {
				return err
			}
			result, err := svc.ConvertVideoToGif(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printResult(cmd, ctx, result)
		},
	}
	convertFlags.register(convertCmd, true)

	gifCmd.AddCommand(estimateCmd, convertCmd)
	return gifCmd
}

func formatSecondsLabel(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64) + "s"
}
