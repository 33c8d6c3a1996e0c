package main

import (
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/video-translator-bot/internal/config"
)

type commandContext struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "video-translator-bot",
		Short:         "Telegram bot that burns translated subtitles into videos",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx.configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", config.DefaultPath, "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSubtitleCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))

	return rootCmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx.configPath)
		},
	}
}
