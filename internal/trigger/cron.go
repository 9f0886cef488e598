package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron emits a tick on every match of a standard five-field cron schedule.
// Ticks are dropped while the previous one is still unconsumed.
type Cron struct {
	schedule string
	location *time.Location
}

func NewCron(schedule, timezone string) (*Cron, error) {
	if schedule == "" {
		return nil, fmt.Errorf("cron schedule is required")
	}
	location := time.UTC
	if timezone != "" {
		tz, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
		location = tz
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return &Cron{schedule: schedule, location: location}, nil
}

// Start schedules ticks until ctx is done, then closes the channel.
func (c *Cron) Start(ctx context.Context) (<-chan time.Time, error) {
	events := make(chan time.Time, 1)
	scheduler := cron.New(cron.WithLocation(c.location))
	_, err := scheduler.AddFunc(c.schedule, func() {
		select {
		case events <- time.Now().UTC():
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()

	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		close(events)
	}()
	return events, nil
}
