// Package api serves the screener over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/pipeline"
	"StockScreener/internal/recorder"
)

// Runner triggers a screening run.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger) (*model.RunReport, error)
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Symbol string        `json:"symbol" validate:"required,max=32"`
	Name   string        `json:"name" validate:"max=128"`
	Bars   []model.OHLCV `json:"bars" validate:"required,min=1,dive"`
}

// DefaultResultsLimit applies when GET /api/v1/results has no limit.
const DefaultResultsLimit = 20

// ResultsRequest holds the query of GET /api/v1/results.
type ResultsRequest struct {
	Limit int `query:"limit" validate:"min=1,max=200"`
}

// Handler implements the screener endpoints.
type Handler struct {
	Analyzer *analyzer.Analyzer
	Runner   Runner
	Recorder recorder.Recorder
}

// NewHandler creates a new Handler.
func NewHandler(an *analyzer.Analyzer, runner Runner, rec recorder.Recorder) *Handler {
	return &Handler{Analyzer: an, Runner: runner, Recorder: rec}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/v1")
	g.POST("/analyze", h.Analyze)
	g.GET("/results", h.Results)
	g.POST("/runs", h.TriggerRun)
}

func (h *Handler) Health(c echo.Context) error {
	return SuccessResponse(c, map[string]string{"status": "ok"})
}

// Analyze scores the posted price history. Bars may arrive in any order;
// negative fields are rejected. Short histories produce the
// insufficient-data result, not an error.
func (h *Handler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	bars := collector.NormalizeBars(req.Bars)
	return SuccessResponse(c, h.Analyzer.Analyze(req.Symbol, bars, req.Name))
}

func (h *Handler) Results(c echo.Context) error {
	// binding leaves an absent limit untouched, so an explicit 0 still fails
	req := &ResultsRequest{Limit: DefaultResultsLimit}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	results, err := h.Recorder.LatestResults(c.Request().Context(), req.Limit)
	if err != nil {
		log.Error().Err(err).Msg("load latest results")
		return InternalServerErrorResponse(c)
	}
	if results == nil {
		results = []*model.AnalysisResult{}
	}
	return SuccessResponse(c, results)
}

// TriggerRun runs a screening synchronously. The run is detached from the
// request so a client disconnect does not abort it.
func (h *Handler) TriggerRun(c echo.Context) error {
	report, err := h.Runner.Run(context.WithoutCancel(c.Request().Context()), model.TriggerAPI)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		return ConflictResponse(c, err.Error())
	case err != nil:
		log.Error().Err(err).Msg("api screening run failed")
		return DataResponse(c, http.StatusBadGateway, []ValidationError{{Code: "ERR_RUN", Message: err.Error()}})
	}
	return SuccessResponse(c, report)
}
