package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSweepSchedule runs the sweep every five minutes
const DefaultSweepSchedule = "*/5 * * * *"

// Janitor expires idle sessions on a cron schedule
type Janitor struct {
	manager  *Manager
	cron     *cron.Cron
	schedule string
	entry    cron.EntryID
	log      *logrus.Entry
}

// NewJanitor validates the schedule and prepares a janitor for the manager
func NewJanitor(manager *Manager, schedule string) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	j := &Janitor{
		manager:  manager,
		cron:     cron.New(),
		schedule: schedule,
		log:      logrus.WithField("component", "janitor"),
	}
	j.entry = j.cron.Schedule(parsed, cron.FuncJob(j.sweep))
	return j, nil
}

// Start starts the janitor
func (j *Janitor) Start() {
	j.cron.Start()
	j.log.WithField("schedule", j.schedule).Info("Session janitor started")
}

// Stop stops the janitor and waits for a running sweep
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("Session janitor stopped")
}

// NextRun returns when the next sweep is due
func (j *Janitor) NextRun() time.Time {
	return j.cron.Entry(j.entry).Next
}

func (j *Janitor) sweep() {
	j.manager.Sweep(time.Now().UTC())
}
