package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/video-translator-bot/internal/config"
	"github.com/codebuildervaibhav/video-translator-bot/internal/pipeline"
	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

func newSubtitleCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "subtitle <video>",
		Short: "Burn translated subtitles into a local video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = defaultOutputPath(input)
			}

			cfg, err := config.Read(ctx.configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateSettings(); err != nil {
				return err
			}

			info, err := os.Stat(input)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", input)
			}

			logger, _ := newLogger(cfg)

			workspace := storage.NewWorkspace(cfg.Storage.TempDir, logger)
			if err := workspace.Ensure(); err != nil {
				return err
			}

			st := buildStages(cmd.Context(), cfg, logger, nil)

			var recorder pipeline.JobRecorder
			if !noHistory {
				store, err := storage.NewJobStore(cfg.Storage.Database)
				if err != nil {
					logger.Warn("job history unavailable", "error", err)
				} else {
					defer store.Close()
					recorder = store
				}
			}

			messenger := newConsoleMessenger(cmd.OutOrStdout(), output)
			coordinator := pipeline.New(pipeline.Options{
				Workspace:      workspace,
				Downloader:     localDownloader{},
				Media:          st.media,
				Transcriber:    st.transcriber,
				Subtitles:      st.subtitles,
				Messenger:      messenger,
				Store:          recorder,
				Logger:         logger,
				SourceLanguage: cfg.Translation.SourceLanguage,
			})

			job, err := coordinator.Receive(cmd.Context(), pipeline.Request{
				Requester: "local",
				RequestID: os.Getpid(),
				FileID:    input,
				VideoSize: info.Size(),
			})
			if err != nil {
				return err
			}
			if err := coordinator.Process(cmd.Context(), job); err != nil {
				return err
			}
			if job.State == types.StateNoSpeech || !messenger.Delivered() {
				return errors.New("no speech detected, nothing written")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path (default <video>_subtitled.mp4)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the run in the job database")

	return cmd
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_subtitled.mp4"
}
