package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the job the worker schedules.
type Refresher interface {
	Refresh(ctx context.Context) error
	HasToday(ctx context.Context) (bool, error)
}

// TopChannelsWorker refreshes top channels once a day at a fixed wall-clock
// time, and once on startup when the current day has no rows yet.
type TopChannelsWorker struct {
	job    Refresher
	hour   int
	minute int
	loc    *time.Location
	now    func() time.Time
	stopCh chan struct{}
	log    zerolog.Logger
}

// NewTopChannelsWorker schedules job daily at 00:01 KST.
func NewTopChannelsWorker(job Refresher, log zerolog.Logger) *TopChannelsWorker {
	return &TopChannelsWorker{
		job:    job,
		hour:   0,
		minute: 1,
		loc:    KST,
		now:    time.Now,
		stopCh: make(chan struct{}),
		log:    log.With().Str("component", "top-channels-worker").Logger(),
	}
}

// Start runs the schedule until ctx is cancelled or Stop is called.
func (w *TopChannelsWorker) Start(ctx context.Context) {
	w.log.Info().Int("hour", w.hour).Int("minute", w.minute).Str("tz", w.loc.String()).Msg("starting")

	w.catchUp(ctx)

	for {
		next := NextDailyRun(w.now(), w.hour, w.minute, w.loc)
		timer := time.NewTimer(time.Until(next))
		w.log.Debug().Time("next_run", next).Msg("scheduled")

		select {
		case <-timer.C:
			w.tick(ctx)
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("stopping (context cancelled)")
			return
		case <-w.stopCh:
			timer.Stop()
			w.log.Info().Msg("stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *TopChannelsWorker) Stop() {
	close(w.stopCh)
}

// catchUp runs a refresh immediately when today has no rows.
func (w *TopChannelsWorker) catchUp(ctx context.Context) {
	has, err := w.job.HasToday(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("could not check for today's rows")
		return
	}
	if has {
		w.log.Info().Msg("today's top channels already present, skipping startup refresh")
		return
	}
	w.log.Info().Msg("no top channels for today, refreshing now")
	w.tick(ctx)
}

func (w *TopChannelsWorker) tick(ctx context.Context) {
	if err := w.job.Refresh(ctx); err != nil {
		w.log.Error().Err(err).Msg("refresh failed")
	}
}
