package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/config"
	"github.com/rewired-gh/whetherai/internal/inference"
	"github.com/rewired-gh/whetherai/internal/logger"
	"github.com/rewired-gh/whetherai/internal/openweather"
	"github.com/rewired-gh/whetherai/internal/service"
)

var (
	// Path to a YAML config file; empty means defaults plus environment.
	cfgFile string
	// Forces debug logging regardless of logging.level.
	debug bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "whetherai",
		Short: "Rain and sunlight predictions for farmers",
		Long: `whetherai fetches the current weather for a place and estimates the chance
of rain and bright sunlight with a small Bayesian network.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newNotifyCmd())
	root.AddCommand(newHistoryCmd())
	return root
}

// loadConfig reads, validates and applies the configuration. Commands that
// never call the weather API pass local to skip its settings.
func loadConfig(local bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	validate := cfg.Validate
	if local {
		validate = cfg.ValidateLocal
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger.Init(level, cfg.Logging.Format)
	if cfgFile != "" {
		logger.Debug("Configuration loaded from %s", cfgFile)
	}
	return cfg, nil
}

func newWeatherClient(cfg *config.Config) *openweather.Client {
	return openweather.NewClient(
		cfg.OpenWeather.APIBaseURL,
		cfg.OpenWeather.APIKey,
		cfg.OpenWeather.Timeout,
		openweather.ClientConfig{
			Units:           cfg.OpenWeather.Units,
			BreakerFailures: cfg.OpenWeather.BreakerFailures,
			BreakerCooldown: cfg.OpenWeather.BreakerCooldown,
		},
	)
}

func thresholds(cfg *config.Config) service.Thresholds {
	return service.Thresholds{
		TemperatureC: cfg.Thresholds.TemperatureC,
		HumidityPct:  cfg.Thresholds.HumidityPct,
		CloudKeyword: cfg.Thresholds.CloudKeyword,
	}
}

// newEngine builds the inference engine. Broken tables are a startup
// failure, never a per-request one.
func newEngine() (*inference.Engine, error) {
	engine, err := inference.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inference engine: %w", err)
	}
	return engine, nil
}
