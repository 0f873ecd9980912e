package digest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Daily is the schedule of the digest: every day at noon.
const Daily = "0 12 * * *"

// Next returns the first time after now matching the cron schedule spec.
func Next(spec string, now time.Time) (time.Time, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(now), nil
}

// Schedule runs the digest on the cron schedule spec, in loc, until ctx is done.
func (j *Job) Schedule(ctx context.Context, spec string, loc *time.Location) error {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := j.Run(ctx); err != nil {
			j.logger().Error("daily news digest failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	if next, err := Next(spec, time.Now().In(loc)); err == nil {
		j.logger().Info("daily news digest scheduled", "schedule", spec, "next", next)
	}

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
