package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"StockScreener/internal/model"
)

var printJSON bool

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single screening pass and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.runner.Run(cmd.Context(), model.TriggerManual)
		if err != nil {
			return err
		}
		if printJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return nil
	},
}

func init() {
	onceCmd.Flags().BoolVar(&printJSON, "json", false, "print the run report as JSON")
}
