package recorder

import (
	"context"

	"StockScreener/internal/model"
)

// NoopRecorder is used when no persistence is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *model.RunReport) error { return nil }

func (n *NoopRecorder) LatestResults(_ context.Context, _ int) ([]*model.AnalysisResult, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
