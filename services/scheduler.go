// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// StartMaintenanceScheduler runs the daily-earnings sweep at 00:00 UTC and
// expires stale order offers every minute. Stop it with Shutdown.
func StartMaintenanceScheduler(ctx context.Context, resets *ResetService, orders *OrderService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	// Midnight UTC: zero daily_earnings for everyone not reset lazily yet
	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			n, err := resets.SweepDailyEarnings(ctx)
			if err != nil {
				log.Errorf("[Scheduler] daily reset sweep failed: %v", err)
				return
			}
			log.Infof("✅ Daily earnings reset for %d account(s)", n)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("schedule daily reset: %w", err)
	}

	// Every minute: expire order offers past their deadline
	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			n, err := orders.ExpireStaleOffers(ctx)
			if err != nil {
				log.Errorf("[Scheduler] offer expiry failed: %v", err)
				return
			}
			if n > 0 {
				log.Debugf("Expired %d stale order offer(s)", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("schedule offer expiry: %w", err)
	}

	sched.Start()
	return sched, nil
}
