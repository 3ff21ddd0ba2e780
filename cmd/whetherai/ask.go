package main

import (
	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/console"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask",
		Short: "Interactive weather guide for farmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			engine, err := newEngine()
			if err != nil {
				return err
			}

			session := console.NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), newWeatherClient(cfg), engine, thresholds(cfg))
			return session.Run(cmd.Context())
		},
	}
}
