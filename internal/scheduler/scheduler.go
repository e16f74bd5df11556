// Package scheduler triggers screening runs from cron and chat commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/pipeline"
	"StockScreener/internal/recorder"
)

// DefaultScreenCron runs after the KRX close on weekdays (seconds field first).
const DefaultScreenCron = "0 40 15 * * 1-5"

// LatestLimit is the number of results the /latest command shows.
const LatestLimit = 10

// Runner is the part of pipeline.Runner the scheduler drives.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger) (*model.RunReport, error)
}

// Scheduler manages the cron jobs and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(ctx context.Context, runner Runner, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the screening job.
func (s *Scheduler) RegisterAll(screenCron string) error {
	if screenCron == "" {
		screenCron = DefaultScreenCron
	}
	if _, err := s.Cron.AddFunc(screenCron, s.screenTask); err != nil {
		return fmt.Errorf("register screening task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes a screening run immediately (RUN_ON_START, manual trigger).
func (s *Scheduler) RunNow(trigger model.Trigger) error {
	_, err := s.Runner.Run(s.Ctx, trigger)
	return err
}

func (s *Scheduler) screenTask() {
	log.Info().Msg("running scheduled screening")
	if err := s.RunNow(model.TriggerScheduled); err != nil {
		log.Error().Err(err).Msg("scheduled screening failed")
	}
}

// HandleCommand processes a chat command and returns the reply. The
// /screen reply is the run report itself, sent by the pipeline, so it
// returns an empty string on success.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/screen@my_bot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/screen":
		_, err := s.Runner.Run(ctx, model.TriggerCommand)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			return "⏳ A screening run is already in progress."
		case err != nil:
			log.Error().Err(err).Msg("command screening failed")
		}
		return ""
	case "/latest":
		results, err := s.Recorder.LatestResults(ctx, LatestLimit)
		if err != nil {
			log.Error().Err(err).Msg("load latest results")
			return notifier.FormatError("/latest", err)
		}
		return notifier.FormatLatest(results)
	default:
		return notifier.FormatHelp()
	}
}
