package model

// Indicator series names.
const (
	SeriesSMA5       = "sma_5"
	SeriesSMA20      = "sma_20"
	SeriesSMA60      = "sma_60"
	SeriesRSI        = "rsi"
	SeriesMACD       = "macd"
	SeriesMACDSignal = "macd_signal"
	SeriesMACDHist   = "macd_hist"
	SeriesBBUpper    = "bb_upper"
	SeriesBBMiddle   = "bb_middle"
	SeriesBBLower    = "bb_lower"
	SeriesStochK     = "stoch_k"
	SeriesStochD     = "stoch_d"
	SeriesClose      = "close"
	SeriesVolume     = "volume"
)

// SeriesNames lists every series an IndicatorSnapshot carries.
var SeriesNames = []string{
	SeriesSMA5, SeriesSMA20, SeriesSMA60, SeriesRSI,
	SeriesMACD, SeriesMACDSignal, SeriesMACDHist,
	SeriesBBUpper, SeriesBBMiddle, SeriesBBLower,
	SeriesStochK, SeriesStochD, SeriesClose, SeriesVolume,
}

// IndicatorSnapshot holds full-length indicator series aligned index-for-index
// with the input bars. Entries without enough history are NaN.
type IndicatorSnapshot struct {
	SMA5       []float64
	SMA20      []float64
	SMA60      []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	BBUpper    []float64
	BBMiddle   []float64
	BBLower    []float64
	StochK     []float64
	StochD     []float64
	Close      []float64
	Volume     []float64
}

// Len returns the number of bars the snapshot was computed from.
func (s *IndicatorSnapshot) Len() int {
	return len(s.Close)
}

// Series looks up a series by name.
func (s *IndicatorSnapshot) Series(name string) ([]float64, bool) {
	switch name {
	case SeriesSMA5:
		return s.SMA5, true
	case SeriesSMA20:
		return s.SMA20, true
	case SeriesSMA60:
		return s.SMA60, true
	case SeriesRSI:
		return s.RSI, true
	case SeriesMACD:
		return s.MACD, true
	case SeriesMACDSignal:
		return s.MACDSignal, true
	case SeriesMACDHist:
		return s.MACDHist, true
	case SeriesBBUpper:
		return s.BBUpper, true
	case SeriesBBMiddle:
		return s.BBMiddle, true
	case SeriesBBLower:
		return s.BBLower, true
	case SeriesStochK:
		return s.StochK, true
	case SeriesStochD:
		return s.StochD, true
	case SeriesClose:
		return s.Close, true
	case SeriesVolume:
		return s.Volume, true
	}
	return nil, false
}
