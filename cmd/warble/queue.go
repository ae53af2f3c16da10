package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"warble/internal/queue"
)

func newQueueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the job queue",
	}
	cmd.AddCommand(newQueueListCommand(), newQueueClearCommand())
	return cmd
}

func newQueueListCommand() *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []queue.Status
			if statusFilter != "" {
				for _, part := range strings.Split(statusFilter, ",") {
					status, ok := queue.ParseStatus(part)
					if !ok {
						return fmt.Errorf("unknown status %q", part)
					}
					statuses = append(statuses, status)
				}
			}

			jobsList, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			if len(jobsList) == 0 {
				fmt.Println("queue is empty")
				return nil
			}

			titler := cases.Title(language.English)
			t := newTable()
			t.AppendHeader(table.Row{"ID", "Effect", "Status", "Error", "Progress", "Created", "Latency"})
			for _, job := range jobsList {
				latency := ""
				if job.FinishedAt != nil {
					latency = job.Latency().Round(time.Millisecond).String()
				}
				t.AppendRow(table.Row{
					job.ID,
					job.EffectID,
					titler.String(strings.ReplaceAll(string(job.Status), "_", " ")),
					string(job.ErrorKind),
					fmt.Sprintf("%.0f%%", job.ProgressPercent),
					job.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					latency,
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&statusFilter, "status", "", "comma-separated status filter")
	return cmd
}

func newQueueClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed, failed, timed out, and cancelled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.ClearTerminal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("removed %d terminal jobs\n", removed)
			return nil
		},
	}
}
