package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPlatformStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := NewAdminService(env.db)

	empty, err := admin.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalUsers != 0 || !empty.TotalPlatformBalance.IsZero() {
		t.Fatalf("empty stats = %+v", empty)
	}

	a := env.register(t, "stats-a")
	b := env.register(t, "stats-b")
	env.setAccount(t, a, map[string]interface{}{"balance": dec("600.5")})
	env.setAccount(t, b, map[string]interface{}{"balance": dec("50.25")})

	if _, err := env.transactions.CreateWithdrawal(ctx, a, dec("300"), "wallet"); err != nil {
		t.Fatal(err)
	}
	env.transactions.CreateDeposit(ctx, b, dec("1000"))
	env.transactions.CreateDeposit(ctx, b, dec("2000"))

	stats, err := admin.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalUsers != 2 || stats.PendingWithdrawals != 1 || stats.PendingDeposits != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	assertDecimal(t, "platform balance", stats.TotalPlatformBalance, "350.75")
}

func TestListUsersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	admin := NewAdminService(env.db)

	for i := 0; i < 3; i++ {
		env.register(t, fmt.Sprintf("user-%d", i))
		env.clock.Advance(time.Second)
	}
	users, err := admin.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 || users[0].Login != "user-2" || users[2].Login != "user-0" {
		t.Fatalf("users = %v", users)
	}
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewNotificationService(env.db, env.clock.Now)

	if _, err := svc.Create(ctx, " ", "body"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title err = %v", err)
	}

	cursor := env.clock.Now()
	for i := 0; i < 12; i++ {
		env.clock.Advance(time.Second)
		if _, err := svc.Create(ctx, fmt.Sprintf("news %d", i), "message"); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != NotificationListLimit {
		t.Fatalf("len = %d, want %d", len(latest), NotificationListLimit)
	}
	if latest[0].Title != "news 11" || latest[9].Title != "news 2" {
		t.Fatalf("order = %s .. %s", latest[0].Title, latest[9].Title)
	}

	since, err := svc.Since(ctx, cursor.Add(10*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 3 || since[0].Title != "news 9" || since[2].Title != "news 11" {
		t.Fatalf("since = %v", since)
	}
}

func TestNotificationFeedSameTimestamp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewNotificationService(env.db, env.clock.Now)

	if _, err := svc.Create(ctx, "before", "opened later"); err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(time.Second)
	feed := svc.NewFeed()

	env.clock.Advance(time.Second)
	first, _ := svc.Create(ctx, "first", "same instant")
	batch, err := feed.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 1 || batch[0].ID != first.ID {
		t.Fatalf("first batch = %v", batch)
	}

	// same timestamp, arrives after the previous poll
	second, _ := svc.Create(ctx, "second", "same instant")
	batch, _ = feed.Next(ctx)
	if len(batch) != 1 || batch[0].ID != second.ID {
		t.Fatalf("second batch = %v", batch)
	}

	if batch, _ = feed.Next(ctx); len(batch) != 0 {
		t.Fatalf("repeat delivery = %v", batch)
	}

	env.clock.Advance(time.Second)
	third, _ := svc.Create(ctx, "third", "later")
	batch, _ = feed.Next(ctx)
	if len(batch) != 1 || batch[0].ID != third.ID {
		t.Fatalf("third batch = %v", batch)
	}
}
