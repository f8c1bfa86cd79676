package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"faberlic-mining/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testStart = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// scriptedRandom replays fixed values, cycling when exhausted.
type scriptedRandom struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
	i, f   int
}

func (r *scriptedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.i%len(r.ints)]
	r.i++
	return v % n
}

func (r *scriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.f%len(r.floats)]
	r.f++
	return v
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db           *gorm.DB
	clock        *fakeClock
	rng          *scriptedRandom
	ledger       *Ledger
	auth         *AuthService
	vip          *VIPService
	mining       *MiningService
	spin         *SpinService
	orders       *OrderService
	transactions *TransactionService
	resets       *ResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	rng := &scriptedRandom{}
	ledger := NewLedger(db, NewLocalLocker(), nil, clock.Now)

	auth := NewAuthService(db, "test-secret", 720*time.Hour, clock.Now)
	auth.HashCost = bcrypt.MinCost

	env := &testEnv{
		db:           db,
		clock:        clock,
		rng:          rng,
		ledger:       ledger,
		auth:         auth,
		vip:          NewVIPService(ledger),
		mining:       NewMiningService(ledger),
		spin:         NewSpinService(ledger, rng),
		orders:       NewOrderService(ledger, rng, 10*time.Minute, nil),
		transactions: NewTransactionService(ledger, DefaultTransactionRules()),
		resets:       NewResetService(ledger),
	}
	if err := env.vip.EnsureDefaultTiers(context.Background()); err != nil {
		t.Fatalf("seed tiers: %v", err)
	}
	return env
}

func (e *testEnv) register(t *testing.T, login string) string {
	t.Helper()
	res, err := e.auth.Register(context.Background(), login, "password123")
	if err != nil {
		t.Fatalf("register %s: %v", login, err)
	}
	return res.Account.ID
}

func (e *testEnv) setAccount(t *testing.T, id string, updates map[string]interface{}) {
	t.Helper()
	if err := e.db.Model(&models.Account{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		t.Fatalf("update account: %v", err)
	}
}

func (e *testEnv) account(t *testing.T, id string) models.Account {
	t.Helper()
	var acct models.Account
	if err := e.db.First(&acct, "id = ?", id).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return acct
}

func (e *testEnv) countTransactions(t *testing.T, id string, kind models.TransactionKind) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&models.Transaction{}).Where("user_id = ? AND type = ?", id, kind).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	kind, ok := KindOf(err)
	if !ok || kind != want {
		t.Fatalf("error = %v (kind %q), want kind %q", err, kind, want)
	}
}

// fullPatch sends every field of tier except is_active.
func fullPatch(tier models.VIPTier) TierPatch {
	p := TierPatch{
		DepositRequired:    &tier.DepositRequired,
		MaxDailyEarnings:   &tier.MaxDailyEarnings,
		OrdersPerDay:       &tier.OrdersPerDay,
		CommissionPerOrder: &tier.CommissionPerOrder,
	}
	if tier.Name != "" {
		p.Name = &tier.Name
	}
	return p
}
