package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sweeper drops expired entries and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Janitor periodically sweeps expired sessions out of an in-process store.
type Janitor struct {
	sweeper Sweeper
	cron    *cron.Cron
	now     func() time.Time
}

// NewJanitor creates a janitor that runs on the given cron schedule
// (standard five-field syntax or descriptors such as "@every 5m").
func NewJanitor(sweeper Sweeper, schedule string) (*Janitor, error) {
	j := &Janitor{
		sweeper: sweeper,
		cron:    cron.New(),
		now:     time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Run starts the schedule in the background.
func (j *Janitor) Run() {
	log.Info().Msg("Starting session janitor")
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	log.Info().Msg("Stopped session janitor")
}

func (j *Janitor) sweep() {
	if removed := j.sweeper.Sweep(j.now()); removed > 0 {
		log.Debug().Int("removed", removed).Msg("Swept expired sessions")
	}
}
