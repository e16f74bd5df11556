package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/pipeline"
)

type stubRunner struct {
	err      error
	triggers []model.Trigger
}

func (s *stubRunner) Run(_ context.Context, trigger model.Trigger) (*model.RunReport, error) {
	s.triggers = append(s.triggers, trigger)
	if s.err != nil {
		return nil, s.err
	}
	return &model.RunReport{ID: "run-1", Trigger: trigger}, nil
}

type stubRecorder struct {
	limit   int
	results []*model.AnalysisResult
}

func (s *stubRecorder) RecordRun(context.Context, *model.RunReport) error { return nil }

func (s *stubRecorder) LatestResults(_ context.Context, limit int) ([]*model.AnalysisResult, error) {
	s.limit = limit
	return s.results, nil
}

func (s *stubRecorder) Close() error { return nil }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(runner *stubRunner, rec *stubRecorder) *Server {
	h := NewHandler(analyzer.New(), runner, rec)
	return NewServer(":0", h, metrics.New().Handler())
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func barsJSON(t *testing.T, n int) string {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	b, err := json.Marshal(bars)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})
	rec, env := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})

	body := `{"symbol":"005930","name":"Samsung Electronics","bars":` + barsJSON(t, 40) + `}`
	rec, env := do(t, s, http.MethodPost, "/api/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.AnalysisResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "005930", res.Symbol)
	assert.Equal(t, model.StatusComputed, res.Status)
	assert.InDelta(t, 139.0, res.Indicators.CurrentPrice, 1e-9)

	body = `{"symbol":"005930","bars":` + barsJSON(t, 5) + `}`
	rec, env = do(t, s, http.MethodPost, "/api/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, model.StatusInsufficientData, res.Status)
	assert.Equal(t, model.RecWatch, res.Recommendation)
}

func TestAnalyze_UnorderedBarsAreSorted(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})

	var bars []model.OHLCV
	require.NoError(t, json.Unmarshal([]byte(barsJSON(t, 40)), &bars))
	ascending, err := json.Marshal(bars)
	require.NoError(t, err)
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	reversed, err := json.Marshal(bars)
	require.NoError(t, err)

	decode := func(body string) model.AnalysisResult {
		rec, env := do(t, s, http.MethodPost, "/api/v1/analyze", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res model.AnalysisResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		return res
	}
	want := decode(`{"symbol":"005930","bars":` + string(ascending) + `}`)
	got := decode(`{"symbol":"005930","bars":` + string(reversed) + `}`)

	assert.InDelta(t, 139.0, got.Indicators.CurrentPrice, 1e-9)
	assert.Equal(t, want.Scores, got.Scores)
	assert.Equal(t, want.Signals, got.Signals)
	assert.Equal(t, want.Narrative.PriceTrend, got.Narrative.PriceTrend)
}

func TestAnalyze_NegativeBarRejected(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})

	var bars []model.OHLCV
	require.NoError(t, json.Unmarshal([]byte(barsJSON(t, 40)), &bars))
	bars[39].Close = -500
	bars[39].Volume = -1000
	b, err := json.Marshal(bars)
	require.NoError(t, err)

	rec, env := do(t, s, http.MethodPost, "/api/v1/analyze", `{"symbol":"005930","bars":`+string(b)+`}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errs []ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, "ERR_GTE", errs[0].Code)
	assert.Equal(t, "Close", errs[0].Field)
	assert.Equal(t, "Volume", errs[1].Field)
}

func TestAnalyze_Validation(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing symbol", `{"bars":` + barsJSON(t, 3) + `}`, "ERR_REQUIRED"},
		{"missing bars", `{"symbol":"005930"}`, "ERR_REQUIRED"},
		{"empty bars", `{"symbol":"005930","bars":[]}`, "ERR_MIN"},
		{"malformed", `{"symbol":`, "ERR_BIND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var errs []ValidationError
			require.NoError(t, json.Unmarshal(env.Data, &errs))
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestResults(t *testing.T) {
	recorder := &stubRecorder{}
	s := newTestServer(&stubRunner{}, recorder)

	rec, env := do(t, s, http.MethodGet, "/api/v1/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, recorder.limit)
	assert.JSONEq(t, `[]`, string(env.Data))

	recorder.results = []*model.AnalysisResult{{Symbol: "000660", Status: model.StatusComputed}}
	rec, env = do(t, s, http.MethodGet, "/api/v1/results?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, recorder.limit)
	assert.Contains(t, string(env.Data), `"stock_code":"000660"`)

	for _, limit := range []string{"0", "500", "-1"} {
		rec, _ = do(t, s, http.MethodGet, "/api/v1/results?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
	assert.Equal(t, 5, recorder.limit)
}

func TestTriggerRun(t *testing.T) {
	runner := &stubRunner{}
	s := newTestServer(runner, &stubRecorder{})

	rec, env := do(t, s, http.MethodPost, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"id":"run-1"`)
	assert.Equal(t, []model.Trigger{model.TriggerAPI}, runner.triggers)

	runner.err = pipeline.ErrRunInProgress
	rec, _ = do(t, s, http.MethodPost, "/api/v1/runs", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(&stubRunner{}, &stubRecorder{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
