package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/model"
)

const exportPrefix = "technical_analysis_"

// JSONExporter writes every run as technical_analysis_<timestamp>.json
// into Dir.
type JSONExporter struct {
	Dir string
}

// NewJSONExporter creates the export directory if needed.
func NewJSONExporter(dir string) (*JSONExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &JSONExporter{Dir: dir}, nil
}

// exportFile is the on-disk document.
type exportFile struct {
	RunID     string                  `json:"run_id"`
	Trigger   model.Trigger           `json:"trigger"`
	Condition string                  `json:"condition_name"`
	Timestamp string                  `json:"timestamp"`
	Summary   model.RunSummary        `json:"summary"`
	Results   []*model.AnalysisResult `json:"results"`
	Errors    []model.SymbolError     `json:"errors,omitempty"`
}

func (e *JSONExporter) RecordRun(_ context.Context, report *model.RunReport) error {
	doc := exportFile{
		RunID:     report.ID,
		Trigger:   report.Trigger,
		Condition: report.Condition,
		Timestamp: report.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		Summary:   report.Summary,
		Results:   report.Results,
		Errors:    report.Errors,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	name := exportPrefix + report.StartedAt.Format("20060102_150405") + ".json"
	path := filepath.Join(e.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	log.Info().Str("path", path).Int("results", len(report.Results)).Msg("run exported")
	return nil
}

// LatestResults reads back the newest export file.
func (e *JSONExporter) LatestResults(_ context.Context, limit int) ([]*model.AnalysisResult, error) {
	matches, err := filepath.Glob(filepath.Join(e.Dir, exportPrefix+"*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	// timestamps sort lexically
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	var doc exportFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.TrimPrefix(latest, e.Dir), err)
	}
	if limit > 0 && len(doc.Results) > limit {
		doc.Results = doc.Results[:limit]
	}
	return doc.Results, nil
}

func (e *JSONExporter) Close() error { return nil }
