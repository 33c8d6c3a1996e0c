package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/video-translator-bot/internal/config"
	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recent job history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			cfg, err := config.Read(ctx.configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateSettings(); err != nil {
				return err
			}

			store, err := storage.NewJobStore(cfg.Storage.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderJobs(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	return cmd
}

// jobColumns lists the table headers; counts are right-aligned.
var jobColumns = []struct {
	title string
	align text.Align
}{
	{"ID", text.AlignLeft},
	{"Requester", text.AlignLeft},
	{"Request", text.AlignRight},
	{"State", text.AlignLeft},
	{"Segments", text.AlignRight},
	{"Size", text.AlignRight},
	{"Started", text.AlignLeft},
	{"Duration", text.AlignRight},
	{"Error", text.AlignLeft},
}

func renderJobs(records []storage.JobRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(jobColumns))
	configs := make([]table.ColumnConfig, len(jobColumns))
	for i, col := range jobColumns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)

	for _, r := range records {
		requester := r.Requester
		if requester == "" {
			requester = strconv.FormatInt(r.RequesterID, 10)
		}
		tw.AppendRow(table.Row{
			shortID(r.ID),
			requester,
			strconv.Itoa(r.RequestID),
			string(r.State),
			strconv.Itoa(r.Segments),
			humanize.IBytes(uint64(max(r.VideoBytes, 0))),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(r.Duration()),
			truncate(r.Error, 40),
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
