package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/logger"
	"github.com/rewired-gh/whetherai/internal/service"
	"github.com/rewired-gh/whetherai/internal/storage"
	"github.com/rewired-gh/whetherai/internal/telegram"
)

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "notify <city>",
		Short:   "Send the advice for a city to the configured Telegram chat",
		Example: `  whetherai notify "Nashik"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			if !cfg.Telegram.Enabled {
				return errors.New("telegram is disabled (set telegram.enabled)")
			}

			tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
			if err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Storage.MaxReports, cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			forecaster := service.NewForecaster(newWeatherClient(cfg), engine, thresholds(cfg), store)
			report, err := forecaster.Report(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if err := tg.SendReport(report); err != nil {
				return err
			}
			logger.Info("Sent advice for %s to Telegram", report.Location)
			return nil
		},
	}
}
