// README: Cron job that re-resolves subscription statuses.
package parking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RunSubscriptionScheduler refreshes subscription statuses on spec (standard
// cron syntax or descriptors like "@every 1h") until ctx is done.
func (s *Service) RunSubscriptionScheduler(ctx context.Context, spec string) error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	if _, err := c.AddFunc(spec, func() { s.RefreshSubscriptions(ctx) }); err != nil {
		return fmt.Errorf("schedule subscription refresh %q: %w", spec, err)
	}
	s.logger.Info("scheduled subscription refresh", "schedule", spec)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
