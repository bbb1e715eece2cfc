package monitoring

import (
	"fmt"
	"time"

	"github.com/lmoren/credstore-be/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Reaper clears expired reset-token state on a cron schedule so stale
// token hashes do not linger in the store. Expiry is already enforced at
// verification time; the reaper only tidies records.
type Reaper struct {
	store    store.UserStoreProvider
	schedule cron.Schedule
	done     chan bool
}

// NewReaper creates a reaper from a standard cron expression.
func NewReaper(s store.UserStoreProvider, cronExpr string) (*Reaper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid reaper schedule %q: %w", cronExpr, err)
	}
	return &Reaper{
		store:    s,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the reaper loop. It runs once immediately, then on schedule.
func (r *Reaper) Run() {
	log.Info().Msg("Starting reset-token reaper")

	r.reap()

	for {
		timer := time.NewTimer(time.Until(r.schedule.Next(time.Now())))
		select {
		case <-r.done:
			timer.Stop()
			log.Info().Msg("Stopping reset-token reaper")
			return
		case <-timer.C:
			r.reap()
		}
	}
}

// Stop halts the reaper.
func (r *Reaper) Stop() {
	r.done <- true
}

func (r *Reaper) reap() {
	cleared, err := r.store.ClearExpiredResetTokens(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Reaper: failed to clear expired reset tokens")
		return
	}
	if cleared > 0 {
		log.Info().Int64("cleared", cleared).Msg("Reaper: cleared expired reset tokens")
	}
}
