package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
	"StockScreener/internal/pipeline"
)

type stubRunner struct {
	triggers []model.Trigger
	err      error
}

func (s *stubRunner) Run(_ context.Context, trigger model.Trigger) (*model.RunReport, error) {
	s.triggers = append(s.triggers, trigger)
	if s.err != nil {
		return nil, s.err
	}
	return &model.RunReport{Trigger: trigger}, nil
}

type stubRecorder struct {
	results []*model.AnalysisResult
	err     error
	limit   int
}

func (s *stubRecorder) RecordRun(context.Context, *model.RunReport) error { return nil }

func (s *stubRecorder) LatestResults(_ context.Context, limit int) ([]*model.AnalysisResult, error) {
	s.limit = limit
	return s.results, s.err
}

func (s *stubRecorder) Close() error { return nil }

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRunner{}, &stubRecorder{})
	require.NoError(t, s.RegisterAll(""))
	assert.Len(t, s.Cron.Entries(), 1)

	require.NoError(t, s.RegisterAll("*/30 * * * * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron"))
	// five-field specs are rejected because the seconds field is required
	assert.Error(t, s.RegisterAll("40 15 * * 1-5"))
}

func TestRunNow(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(context.Background(), runner, &stubRecorder{})
	require.NoError(t, s.RunNow(model.TriggerManual))
	s.screenTask()
	assert.Equal(t, []model.Trigger{model.TriggerManual, model.TriggerScheduled}, runner.triggers)
}

func TestHandleCommand_Screen(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(context.Background(), runner, &stubRecorder{})

	assert.Equal(t, "", s.HandleCommand(context.Background(), "/screen"))
	assert.Equal(t, "", s.HandleCommand(context.Background(), "/screen@screener_bot"))
	assert.Equal(t, []model.Trigger{model.TriggerCommand, model.TriggerCommand}, runner.triggers)

	runner.err = pipeline.ErrRunInProgress
	assert.Contains(t, s.HandleCommand(context.Background(), "/screen"), "already in progress")

	runner.err = errors.New("boom")
	assert.Equal(t, "", s.HandleCommand(context.Background(), "/screen"))
}

func TestHandleCommand_Latest(t *testing.T) {
	rec := &stubRecorder{results: []*model.AnalysisResult{{
		Symbol: "005930", Name: "Samsung Electronics", Status: model.StatusComputed,
		Scores: model.ScoreBreakdown{Overall: 71}, Recommendation: model.RecBuy,
	}}}
	s := NewScheduler(context.Background(), &stubRunner{}, rec)

	reply := s.HandleCommand(context.Background(), "/latest")
	assert.Contains(t, reply, "Samsung Electronics")
	assert.Contains(t, reply, "71.0")
	assert.Equal(t, LatestLimit, rec.limit)

	rec.err = errors.New("db locked")
	assert.Contains(t, s.HandleCommand(context.Background(), "/latest"), "db locked")
}

func TestHandleCommand_Help(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRunner{}, &stubRecorder{})
	for _, cmd := range []string{"/help", "hello", ""} {
		assert.Contains(t, s.HandleCommand(context.Background(), cmd), "/screen")
	}
}
