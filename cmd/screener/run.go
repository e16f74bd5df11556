package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockScreener/internal/api"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler, chat command polling and HTTP API",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.NewScheduler(ctx, a.runner, a.recorder)
	if err := sched.RegisterAll(cfg.Schedule.ScreenCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	var srv *api.Server
	if cfg.HTTP.Enabled {
		srv = api.NewServer(cfg.HTTP.Addr, api.NewHandler(a.analyzer, a.runner, a.recorder), a.metrics.Handler())
		srv.Start()
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, screening now")
		go func() {
			if err := sched.RunNow(model.TriggerManual); err != nil {
				log.Error().Err(err).Msg("startup screening failed")
			}
		}()
	}

	log.Info().Str("cron", cfg.Schedule.ScreenCron).Msg("screener is running, press Ctrl+C to stop")
	a.sendStatus(ctx, notifier.SystemStatus{Healthy: true, Status: "started", Message: "screening cron " + cfg.Schedule.ScreenCron})
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	// ctx is done; the stop notice gets its own deadline
	statusCtx, cancelStatus := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStatus()
	a.sendStatus(statusCtx, notifier.SystemStatus{Status: "stopped"})

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}
	return nil
}

func (a *app) sendStatus(ctx context.Context, status notifier.SystemStatus) {
	status.At = time.Now()
	if err := a.notifier.Send(ctx, notifier.FormatSystemStatus(status)); err != nil {
		log.Warn().Err(err).Str("status", status.Status).Msg("send system status")
	}
}
