package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockScreener/internal/config"
	"StockScreener/internal/logger"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Technical stock screener",
	Long: `Runs a saved condition search, scores every hit with technical
indicators (moving averages, RSI, MACD, Bollinger bands, stochastic,
volume) and publishes a ranked report to Telegram or Slack.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			path = config.DefaultPath
		}
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.Init(c.Log.Level, c.Log.Format); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.AddCommand(runCmd, onceCmd, analyzeCmd)
}
