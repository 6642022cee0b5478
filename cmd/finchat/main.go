package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodell/finchat/internal/cli"
	"github.com/kodell/finchat/internal/config"
	"github.com/kodell/finchat/internal/logger"
)

var (
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finchat",
		Short: "FinChat - Markets, Economics and Weather Assistant",
		Long: `FinChat is a conversational assistant for financial and economic data.

It can:
  • Look up real-time stock quotes and daily price history
  • Compute SMA and RSI technical indicators
  • Convert between currencies and cryptocurrencies
  • Search and read FRED economic data series
  • Report current weather for any city`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := initLogger(cfg); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Close()

			return cli.Run(cfg)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Println(cfg.String())

			path, _ := config.ConfigPath()
			fmt.Printf("\nConfig file path: %s\n", path)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FinChat v%s\n", version)
		},
	}

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		LogDir:     cfg.Log.Dir,
		Level:      logger.ParseLevel(cfg.Log.Level),
		ConsoleOut: cfg.Log.Console,
	})
}
