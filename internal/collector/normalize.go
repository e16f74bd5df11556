package collector

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"StockScreener/internal/model"
)

// ParseBrokerNumber converts a broker numeric field such as "-71,300" or
// " +1,234.5 " into its unsigned magnitude. Empty or invalid input yields 0.
func ParseBrokerNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Abs(v)
}

// ParseSignedBrokerNumber is ParseBrokerNumber keeping a leading minus,
// for fields where the sign carries meaning (change rate, PER).
func ParseSignedBrokerNumber(s string) float64 {
	v := ParseBrokerNumber(s)
	if v != 0 && strings.HasPrefix(strings.TrimSpace(s), "-") {
		return -v
	}
	return v
}

// NormalizeBars sorts bars ascending by time and makes every numeric field
// a finite, non-negative magnitude. The input slice is not modified.
func NormalizeBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Time,
			Open:   magnitude(b.Open),
			High:   magnitude(b.High),
			Low:    magnitude(b.Low),
			Close:  magnitude(b.Close),
			Volume: magnitude(b.Volume),
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func magnitude(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Abs(v)
}
