package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooBody = `{"chart":{"result":[{
 "meta":{"regularMarketPrice":105,"chartPreviousClose":100,"regularMarketVolume":5000,"fullExchangeName":"KSE"},
 "timestamp":[1704153600,1704240000,1704326400],
 "indicators":{"quote":[{
   "open":[100,null,104],"high":[101,null,106],"low":[99,null,103],"close":[100.5,null,105],"volume":[1000,null,1500]
 }]}}],"error":null}}`

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyBars(context.Background(), "005930", 100)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/005930.KS", gotPath)
	require.Len(t, bars, 2, "null rows are skipped")
	assert.Equal(t, 105.0, bars[1].Close)
	assert.Equal(t, 1500.0, bars[1].Volume)
}

func TestYahooFetcher_FetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	q, err := f.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 105.0, q.Price)
	assert.InDelta(t, 5.0, q.ChangeRate, 1e-9)
	assert.Equal(t, "KSE", q.Market)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "XXXX", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooSymbol(t *testing.T) {
	f := NewYahooFetcher("")
	assert.Equal(t, "005930.KS", f.yahooSymbol("005930"))
	assert.Equal(t, "^KS11", f.yahooSymbol("KOSPI"))
	assert.Equal(t, "AAPL", f.yahooSymbol("AAPL"))
	assert.Equal(t, "035720.KQ", f.yahooSymbol("035720.KQ"))
}
