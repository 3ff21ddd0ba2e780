package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently answered weather requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Storage.MaxReports, cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.ListReports(limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports yet.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("WHEN", "LOCATION", "TEMP", "HUMIDITY", "SKY", "RAIN", "SUN")
			for _, r := range reports {
				t.Row(
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.Location,
					fmt.Sprintf("%.1f°C", r.Temperature),
					fmt.Sprintf("%d%%", r.Humidity),
					r.Description,
					fmt.Sprintf("%.0f%%", r.RainChance*100),
					fmt.Sprintf("%.0f%%", r.Sunlight*100),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of reports to show")
	return cmd
}
