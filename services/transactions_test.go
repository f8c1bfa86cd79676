package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"faberlic-mining/models"
)

func TestDepositLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "depositor")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("12.5")})

	_, err := env.transactions.CreateDeposit(ctx, id, dec("999.99"))
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("below-minimum deposit err = %v", err)
	}
	assertKind(t, err, KindInvalidInput)

	entry, err := env.transactions.CreateDeposit(ctx, id, dec("1000"))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != models.TransactionPending || entry.WalletAddress == nil || *entry.WalletAddress != "gLxo79237ALFOBQdmoq" {
		t.Fatalf("deposit = %+v", entry)
	}
	assertDecimal(t, "balance after create", env.account(t, id).Balance, "12.5")

	approved, err := env.transactions.ApproveDeposit(ctx, entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != models.TransactionCompleted || approved.CompletedAt == nil {
		t.Fatalf("approved = %+v", approved)
	}
	acct := env.account(t, id)
	assertDecimal(t, "balance", acct.Balance, "1012.5")
	assertDecimal(t, "deposit_amount", acct.DepositAmount, "1000")

	_, err = env.transactions.ApproveDeposit(ctx, entry.ID)
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("double approve err = %v", err)
	}
	assertDecimal(t, "balance after double approve", env.account(t, id).Balance, "1012.5")

	// approved deposit now qualifies for VIP 1
	if level, err := env.vip.Upgrade(ctx, id); err != nil || level != 1 {
		t.Fatalf("upgrade = %d, %v", level, err)
	}
}

func TestRejectDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "rejected-depositor")

	entry, _ := env.transactions.CreateDeposit(ctx, id, dec("1500"))
	rejected, err := env.transactions.RejectDeposit(ctx, entry.ID, "no transfer received")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != models.TransactionRejected || rejected.AdminNote == nil || *rejected.AdminNote != "no transfer received" {
		t.Fatalf("rejected = %+v", rejected)
	}
	acct := env.account(t, id)
	assertDecimal(t, "balance", acct.Balance, "0")
	assertDecimal(t, "deposit_amount", acct.DepositAmount, "0")

	if _, err := env.transactions.ApproveDeposit(ctx, entry.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("approve after reject err = %v", err)
	}
}

func TestWithdrawalScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "withdrawer")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("300")})

	res, err := env.transactions.CreateWithdrawal(ctx, id, dec("250"), "TRC20-wallet")
	if err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "new balance", res.NewBalance, "50")
	assertDecimal(t, "stored balance", env.account(t, id).Balance, "50")

	_, err = env.transactions.CreateWithdrawal(ctx, id, dec("250"), "TRC20-wallet")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("second withdrawal err = %v", err)
	}
	assertKind(t, err, KindInvalidInput)
	assertDecimal(t, "balance", env.account(t, id).Balance, "50")
	if n := env.countTransactions(t, id, models.TransactionWithdraw); n != 1 {
		t.Fatalf("withdraw transactions = %d", n)
	}
}

func TestWithdrawalValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "validator")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("1000")})

	if _, err := env.transactions.CreateWithdrawal(ctx, id, dec("249.99"), "w"); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("below minimum err = %v", err)
	}
	if _, err := env.transactions.CreateWithdrawal(ctx, id, dec("-300"), "w"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative amount err = %v", err)
	}
	if _, err := env.transactions.CreateWithdrawal(ctx, id, dec("300"), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank wallet err = %v", err)
	}
	assertDecimal(t, "balance", env.account(t, id).Balance, "1000")
}

func TestWithdrawalRejectRefundsAndApproveKeeps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "settler")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("800")})

	first, _ := env.transactions.CreateWithdrawal(ctx, id, dec("300"), "wallet-a")
	second, _ := env.transactions.CreateWithdrawal(ctx, id, dec("400"), "wallet-b")
	assertDecimal(t, "after holds", env.account(t, id).Balance, "100")

	if _, err := env.transactions.RejectWithdrawal(ctx, first.Transaction.ID, "wrong network"); err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "after reject", env.account(t, id).Balance, "400")

	if _, err := env.transactions.ApproveWithdrawal(ctx, second.Transaction.ID); err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "after approve", env.account(t, id).Balance, "400")

	if _, err := env.transactions.RejectWithdrawal(ctx, second.Transaction.ID, "late"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("reject after approve err = %v", err)
	}
	assertDecimal(t, "final", env.account(t, id).Balance, "400")
}

func TestSettleChecksKind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "kinds")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("500")})
	w, _ := env.transactions.CreateWithdrawal(ctx, id, dec("250"), "wallet")

	_, err := env.transactions.ApproveDeposit(ctx, w.Transaction.ID)
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("approve-deposit on withdrawal err = %v", err)
	}
	assertKind(t, err, KindNotFound)
	assertDecimal(t, "balance", env.account(t, id).Balance, "250")
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "historian")

	for i := 0; i < 3; i++ {
		if _, err := env.mining.Tap(ctx, id); err != nil {
			t.Fatal(err)
		}
		env.clock.Advance(time.Minute)
	}
	if _, err := env.transactions.CreateDeposit(ctx, id, dec("2000")); err != nil {
		t.Fatal(err)
	}

	history, err := env.transactions.History(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 4 {
		t.Fatalf("len(history) = %d", len(history))
	}
	if history[0].Kind != models.TransactionDeposit {
		t.Fatalf("newest entry = %s, want deposit", history[0].Kind)
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.After(history[i-1].CreatedAt) {
			t.Fatalf("history not ordered newest first at %d", i)
		}
	}
}

func TestListPendingIncludesLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "pending-user")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("600")})

	env.transactions.CreateWithdrawal(ctx, id, dec("250"), "wallet")
	env.transactions.CreateDeposit(ctx, id, dec("1000"))

	withdrawals, err := env.transactions.ListPending(ctx, models.TransactionWithdraw)
	if err != nil {
		t.Fatal(err)
	}
	if len(withdrawals) != 1 || withdrawals[0].UserLogin != "pending-user" {
		t.Fatalf("withdrawals = %+v", withdrawals)
	}

	deposits, _ := env.transactions.ListPending(ctx, models.TransactionDeposit)
	if len(deposits) != 1 || deposits[0].Kind != models.TransactionDeposit {
		t.Fatalf("deposits = %+v", deposits)
	}
}

func TestAmountsBeyondStoredScaleRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "precise")
	env.setAccount(t, id, map[string]interface{}{"balance": dec("300")})

	if _, err := env.transactions.CreateWithdrawal(ctx, id, dec("250.00005"), "wallet"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("5-decimal withdrawal err = %v", err)
	}
	if _, err := env.transactions.CreateDeposit(ctx, id, dec("1000.00001")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("5-decimal deposit err = %v", err)
	}
	assertDecimal(t, "balance", env.account(t, id).Balance, "300")

	// trailing zeros past the scale are still the same amount
	res, err := env.transactions.CreateWithdrawal(ctx, id, dec("250.12340"), "wallet")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.transactions.RejectWithdrawal(ctx, res.Transaction.ID, ""); err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "balance after refund", env.account(t, id).Balance, "300")
}
