package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"warble/internal/api"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + cfg.Paths.APIBind + "/api/status")
			if err != nil {
				printError("daemon is not running (no response from %s)", cfg.Paths.APIBind)
				return err
			}
			defer resp.Body.Close()

			var status api.DaemonStatus
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status response: %w", err)
			}

			t := newTable()
			t.AppendRow(table.Row{"Running", status.Running})
			t.AppendRow(table.Row{"Version", status.Version})
			t.AppendRow(table.Row{"PID", status.PID})
			t.AppendRow(table.Row{"Workers", status.Workers})
			t.AppendRow(table.Row{"Bot", status.BotEnabled})
			t.AppendRow(table.Row{"Queue DB", status.QueueDBPath})
			t.AppendRow(table.Row{"Idle", fmt.Sprintf("%.0fs", status.IdleSeconds)})
			t.AppendSeparator()
			t.AppendRow(table.Row{"Waiting", status.Queue.Waiting})
			t.AppendRow(table.Row{"Processing", status.Queue.Processing})
			t.AppendRow(table.Row{"Completed", status.Queue.Completed})
			t.AppendRow(table.Row{"Failed", status.Queue.Failed})
			t.Render()
			return nil
		},
	}
}
