package services

import (
	"context"
	"errors"
	"fmt"

	"faberlic-mining/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns the per-account unit of work and every balance mutation.
type Ledger struct {
	DB      *gorm.DB
	Locker  AccountLocker
	Metrics *Metrics
	Now     Clock
}

func NewLedger(db *gorm.DB, locker AccountLocker, metrics *Metrics, clock Clock) *Ledger {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Ledger{DB: db, Locker: locker, Metrics: metrics, Now: clock}
}

// WithAccount takes the account lock, opens a DB transaction and hands fn
// the freshly loaded account row. Returning an error rolls everything back.
func (l *Ledger) WithAccount(ctx context.Context, accountID string, fn func(tx *gorm.DB, acct *models.Account) error) error {
	unlock, err := l.Locker.Lock(ctx, accountID)
	if err != nil {
		return fmt.Errorf("lock account %s: %w", accountID, err)
	}
	defer unlock()

	return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acct models.Account
		if err := forUpdate(tx).First(&acct, "id = ?", accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		return fn(tx, &acct)
	})
}

// forUpdate adds a row lock where the dialect has one; sqlite has none.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Accrue credits a reward to balance and total_earnings (and daily_earnings
// when countsDaily is set) and appends a completed transaction of kind.
func (l *Ledger) Accrue(tx *gorm.DB, acct *models.Account, kind models.TransactionKind, amount decimal.Decimal, countsDaily bool) (*models.Transaction, error) {
	acct.Balance = acct.Balance.Add(amount)
	acct.TotalEarnings = acct.TotalEarnings.Add(amount)
	if countsDaily {
		acct.DailyEarnings = acct.DailyEarnings.Add(amount)
	}

	if err := tx.Model(acct).Updates(map[string]interface{}{
		"balance":        acct.Balance,
		"total_earnings": acct.TotalEarnings,
		"daily_earnings": acct.DailyEarnings,
	}).Error; err != nil {
		return nil, fmt.Errorf("credit %s reward: %w", kind, err)
	}

	now := l.Now()
	entry := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      acct.ID,
		Kind:        kind,
		Amount:      amount,
		Status:      models.TransactionCompleted,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("record %s transaction: %w", kind, err)
	}

	l.Metrics.ObserveAccrual(string(kind), amount)
	log.WithFields(log.Fields{
		"user_id": acct.ID,
		"kind":    kind,
		"amount":  amount.String(),
		"balance": acct.Balance.String(),
	}).Debug("reward accrued")
	return entry, nil
}

// Debit removes amount from the balance, refusing to go negative.
func (l *Ledger) Debit(tx *gorm.DB, acct *models.Account, amount decimal.Decimal) error {
	if acct.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	acct.Balance = acct.Balance.Sub(amount)
	return tx.Model(acct).Update("balance", acct.Balance).Error
}

// Credit adds amount to the balance without touching earnings counters;
// used for approved deposits (withDeposit) and refunded withdrawals.
func (l *Ledger) Credit(tx *gorm.DB, acct *models.Account, amount decimal.Decimal, withDeposit bool) error {
	acct.Balance = acct.Balance.Add(amount)
	updates := map[string]interface{}{"balance": acct.Balance}
	if withDeposit {
		acct.DepositAmount = acct.DepositAmount.Add(amount)
		updates["deposit_amount"] = acct.DepositAmount
	}
	return tx.Model(acct).Updates(updates).Error
}
