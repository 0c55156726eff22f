// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Command hybrid renders and edits scenes described by
// configuration files.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	_ "github.com/gviegas/hybrid/driver/soft"
	"github.com/gviegas/hybrid/internal/log"
)

// options are the flags shared by every command.
type options struct {
	config string
	level  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	rootCmd := &cobra.Command{
		Use:          "hybrid",
		Short:        "Small real-time 3D scene renderer and editor",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "scene configuration file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&opts.level, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(renderCmd(&opts))
	rootCmd.AddCommand(traceCmd(&opts))
	rootCmd.AddCommand(editCmd(&opts))
	rootCmd.AddCommand(inspectCmd(&opts))
	return rootCmd
}

func renderCmd(opts *options) *cobra.Command {
	var (
		output string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the scene and write the last frame as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), opts, output, frames)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write (default from config, else out.png)")
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "number of frames to render (default from config)")
	return cmd
}

func traceCmd(opts *options) *cobra.Command {
	var (
		output string
		frames int
	)
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Render the scene and dump the recorded driver commands as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrace(cmd.Context(), opts, output, frames, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	cmd.Flags().IntVarP(&frames, "frames", "n", 1, "number of frames to record")
	return cmd
}

func editCmd(opts *options) *cobra.Command {
	var (
		save  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the scene in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd.Context(), opts, save, watch)
		},
	}
	cmd.Flags().StringVarP(&save, "save", "s", "", "file the scene is saved to (default is the config file)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the scene when the config file changes")
	return cmd
}

func inspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [model-file...]",
		Short: "Describe the configuration or the given model files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), opts, args, cmd.OutOrStdout())
		},
	}
}
