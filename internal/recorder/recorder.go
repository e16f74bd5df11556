// Package recorder persists screening runs for later inspection.
package recorder

import (
	"context"
	"errors"

	"StockScreener/internal/model"
)

// Recorder persists run reports and serves the most recent results.
type Recorder interface {
	RecordRun(ctx context.Context, report *model.RunReport) error
	LatestResults(ctx context.Context, limit int) ([]*model.AnalysisResult, error)
	Close() error
}

// MultiRecorder writes to every recorder. LatestResults is served by the
// first recorder that returns results.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordRun(ctx context.Context, report *model.RunReport) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiRecorder) LatestResults(ctx context.Context, limit int) ([]*model.AnalysisResult, error) {
	var errs []error
	for _, r := range m {
		res, err := r.LatestResults(ctx, limit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(res) > 0 {
			return res, nil
		}
	}
	return nil, errors.Join(errs...)
}

func (m MultiRecorder) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
