package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"faberlic-mining/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

type fakeStats struct {
	mu    sync.Mutex
	calls int
	fail  bool
	stats services.PlatformStats
}

func (f *fakeStats) Stats(context.Context) (*services.PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("database unavailable")
	}
	s := f.stats
	return &s, nil
}

func (f *fakeStats) update(fn func(f *fakeStats)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func (f *fakeStats) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPollPlatformStats(t *testing.T) {
	source := &fakeStats{stats: services.PlatformStats{
		TotalUsers:           7,
		PendingWithdrawals:   2,
		PendingDeposits:      1,
		TotalPlatformBalance: decimal.RequireFromString("1250.5"),
	}}
	gauges := NewPlatformGauges(prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PollPlatformStats(ctx, source, gauges, 10*time.Millisecond)
		close(done)
	}()

	waitFor(t, func() bool { return testutil.ToFloat64(gauges.Users) == 7 })
	if got := testutil.ToFloat64(gauges.PlatformBalance); got != 1250.5 {
		t.Fatalf("platform balance = %v", got)
	}
	if got := testutil.ToFloat64(gauges.PendingWithdrawals); got != 2 {
		t.Fatalf("pending withdrawals = %v", got)
	}

	// a failing poll keeps the last good values
	source.update(func(f *fakeStats) { f.fail = true })
	calls := source.callCount()
	waitFor(t, func() bool { return source.callCount() > calls+1 })
	if got := testutil.ToFloat64(gauges.Users); got != 7 {
		t.Fatalf("users after failure = %v", got)
	}

	source.update(func(f *fakeStats) {
		f.fail = false
		f.stats.TotalUsers = 9
	})
	waitFor(t, func() bool { return testutil.ToFloat64(gauges.Users) == 9 })

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
