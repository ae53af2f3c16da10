package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"warble/internal/effects"
)

func newEffectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "effects",
		Short: "List the effect catalog, including configured extras",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := effects.New(cfg.Effects.Extra)
			if err != nil {
				return err
			}

			t := newTable()
			t.AppendHeader(table.Row{"ID", "Name", "Cost", "Filter"})
			for _, effect := range registry.List() {
				t.AppendRow(table.Row{effect.ID, effect.DisplayName, effect.CostClass, effect.FilterArgs})
			}
			t.Render()
			return nil
		},
	}
}
