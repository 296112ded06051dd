package cmd

import (
	"github.com/sherpas/supply/config"
	"github.com/spf13/cobra"
)

var (
	environment string
	configFile  string
	rootCmd     = &cobra.Command{
		Use:           "supply",
		Short:         "Sherpas supply chain viewer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads .env files, the configuration and initialises the logger.
func loadConfig() (*config.Config, *config.WalletConfig, error) {
	if err := config.LoadEnv(environment); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(environment, configFile)
	if err != nil {
		return nil, nil, err
	}
	logCfg := cfg.Log
	if cfg.IsLocal() {
		logCfg.Pretty = true
	}
	config.InitLogger(logCfg)
	wallet, err := cfg.Wallet()
	if err != nil {
		return nil, nil, err
	}
	return cfg, wallet, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&environment,
		"env",
		"local",
		"Environment name, selects the .env.<env> file",
	)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Path to a json, yaml or toml configuration file",
	)
	rootCmd.AddCommand(serveCmd, readCmd)
}
