package workers

import (
	"context"
	"time"

	"faberlic-mining/services"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// StatsSource is what the poller reads; *services.AdminService satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (*services.PlatformStats, error)
}

// PlatformGauges mirrors the admin dashboard figures into prometheus.
type PlatformGauges struct {
	Users              prometheus.Gauge
	PendingWithdrawals prometheus.Gauge
	PendingDeposits    prometheus.Gauge
	PlatformBalance    prometheus.Gauge
}

func NewPlatformGauges(reg prometheus.Registerer) *PlatformGauges {
	g := &PlatformGauges{
		Users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewards_accounts",
			Help: "Registered accounts.",
		}),
		PendingWithdrawals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewards_pending_withdrawals",
			Help: "Withdrawals waiting for an administrator.",
		}),
		PendingDeposits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewards_pending_deposits",
			Help: "Deposits waiting for an administrator.",
		}),
		PlatformBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rewards_platform_balance",
			Help: "Sum of all account balances.",
		}),
	}
	reg.MustRegister(g.Users, g.PendingWithdrawals, g.PendingDeposits, g.PlatformBalance)
	return g
}

func (g *PlatformGauges) Set(stats *services.PlatformStats) {
	g.Users.Set(float64(stats.TotalUsers))
	g.PendingWithdrawals.Set(float64(stats.PendingWithdrawals))
	g.PendingDeposits.Set(float64(stats.PendingDeposits))
	g.PlatformBalance.Set(stats.TotalPlatformBalance.InexactFloat64())
}

// PollPlatformStats refreshes the gauges every pollInterval until ctx ends.
// A failed poll keeps the previous values.
func PollPlatformStats(ctx context.Context, source StatsSource, gauges *PlatformGauges, pollInterval time.Duration) {
	log.Infof("Starting platform stats polling (every %s)...", pollInterval)

	refresh := func() {
		stats, err := source.Stats(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Errorf("❌ Error polling platform stats: %v", err)
			}
			return
		}
		gauges.Set(stats)
	}
	refresh()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Platform stats polling stopped.")
			return
		case <-ticker.C:
			refresh()
		}
	}
}
