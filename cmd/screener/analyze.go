package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
)

var (
	analyzeName       string
	analyzeIndicators bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Analyze one symbol and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// printing only, no notification channel needed
		cfg.Notify.DryRun = true
		if err := cfg.Validate(); err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		symbol := args[0]
		if q, err := a.fetcher.FetchQuote(cmd.Context(), symbol); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("quote unavailable")
		} else {
			fmt.Fprintf(os.Stderr, "%s last %s (%+.2f%%) vol %s\n",
				symbol, humanize.CommafWithDigits(q.Price, 2), q.ChangeRate, humanize.Comma(int64(q.Volume)))
		}

		if analyzeIndicators {
			bars, err := a.fetcher.FetchDailyBars(cmd.Context(), symbol, cfg.Screening.HistoryDays)
			if err != nil {
				return err
			}
			writeIndicators(os.Stderr, calculator.NewStandard().Compute(bars))
		}

		res, err := a.runner.AnalyzeSymbol(cmd.Context(), symbol, analyzeName)
		if err != nil {
			return err
		}
		if printJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(notifier.HTMLToPlain(notifier.FormatResult(res)))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "display name of the stock")
	analyzeCmd.Flags().BoolVar(&printJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeIndicators, "indicators", false, "print the latest value of every indicator series")
}

// writeIndicators prints the last value of each series, n/a while warming up.
func writeIndicators(w io.Writer, snap *model.IndicatorSnapshot) {
	for _, name := range model.SeriesNames {
		series, _ := snap.Series(name)
		v := calculator.Last(series)
		if math.IsNaN(v) {
			fmt.Fprintf(w, "%-12s n/a\n", name)
			continue
		}
		fmt.Fprintf(w, "%-12s %s\n", name, humanize.CommafWithDigits(v, 2))
	}
}
