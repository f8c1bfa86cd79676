package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"faberlic-mining/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const HistoryLimit = 100

type TransactionRules struct {
	MinDeposit       decimal.Decimal
	MinWithdrawal    decimal.Decimal
	CollectionWallet string
}

func DefaultTransactionRules() TransactionRules {
	return TransactionRules{
		MinDeposit:       decimal.NewFromInt(1000),
		MinWithdrawal:    decimal.NewFromInt(250),
		CollectionWallet: "gLxo79237ALFOBQdmoq",
	}
}

type TransactionService struct {
	DB     *gorm.DB
	ledger *Ledger
	Rules  TransactionRules
}

func NewTransactionService(ledger *Ledger, rules TransactionRules) *TransactionService {
	return &TransactionService{DB: ledger.DB, ledger: ledger, Rules: rules}
}

type WithdrawalResult struct {
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  decimal.Decimal     `json:"new_balance"`
}

// PendingTransaction is a pending entry joined with its owner's login.
type PendingTransaction struct {
	models.Transaction
	UserLogin string `json:"user_login"`
}

// AmountScale is the number of decimal places stored for money columns.
const AmountScale = 4

func (s *TransactionService) checkMinimum(amount, min decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidInput.WithMessage("amount must be positive")
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return ErrInvalidInput.WithMessage(fmt.Sprintf("amount supports at most %d decimal places", AmountScale))
	}
	if amount.LessThan(min) {
		return ErrBelowMinimum.WithMessage(fmt.Sprintf("minimum amount is %s USDT", min.String()))
	}
	return nil
}

// CreateDeposit records a pending deposit to the collection wallet. The
// balance is untouched until an administrator approves it.
func (s *TransactionService) CreateDeposit(ctx context.Context, userID string, amount decimal.Decimal) (*models.Transaction, error) {
	if err := s.checkMinimum(amount, s.Rules.MinDeposit); err != nil {
		return nil, err
	}

	var entry *models.Transaction
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		wallet := s.Rules.CollectionWallet
		entry = &models.Transaction{
			ID:            uuid.NewString(),
			UserID:        acct.ID,
			Kind:          models.TransactionDeposit,
			Amount:        amount,
			Status:        models.TransactionPending,
			WalletAddress: &wallet,
			CreatedAt:     s.ledger.Now(),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "tx_id": entry.ID, "amount": amount.String()}).Info("deposit requested")
	return entry, nil
}

// CreateWithdrawal debits the balance immediately and records a pending
// withdrawal to walletAddress; rejection refunds it.
func (s *TransactionService) CreateWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, walletAddress string) (*WithdrawalResult, error) {
	if err := s.checkMinimum(amount, s.Rules.MinWithdrawal); err != nil {
		return nil, err
	}
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, ErrInvalidInput.WithMessage("wallet_address is required")
	}

	var result *WithdrawalResult
	err := s.ledger.WithAccount(ctx, userID, func(tx *gorm.DB, acct *models.Account) error {
		if err := s.ledger.Debit(tx, acct, amount); err != nil {
			return err
		}
		entry := &models.Transaction{
			ID:            uuid.NewString(),
			UserID:        acct.ID,
			Kind:          models.TransactionWithdraw,
			Amount:        amount,
			Status:        models.TransactionPending,
			WalletAddress: &walletAddress,
			CreatedAt:     s.ledger.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		result = &WithdrawalResult{Transaction: entry, NewBalance: acct.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "tx_id": result.Transaction.ID, "amount": amount.String()}).Info("withdrawal requested")
	return result, nil
}

// History returns the caller's latest transactions, newest first.
func (s *TransactionService) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(HistoryLimit).
		Find(&entries).Error
	return entries, err
}

// ListPending returns pending entries of kind with the owner's login, oldest first.
func (s *TransactionService) ListPending(ctx context.Context, kind models.TransactionKind) ([]PendingTransaction, error) {
	var entries []models.Transaction
	if err := s.DB.WithContext(ctx).
		Where("type = ? AND status = ?", kind, models.TransactionPending).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	logins := map[string]string{}
	if len(ids) > 0 {
		var accounts []models.Account
		if err := s.DB.WithContext(ctx).Select("id", "login").Where("id IN ?", ids).Find(&accounts).Error; err != nil {
			return nil, err
		}
		for _, a := range accounts {
			logins[a.ID] = a.Login
		}
	}

	out := make([]PendingTransaction, 0, len(entries))
	for _, e := range entries {
		out = append(out, PendingTransaction{Transaction: e, UserLogin: logins[e.UserID]})
	}
	return out, nil
}

// settle loads a pending transaction of kind under its owner's lock and
// lets apply move it to a terminal status.
func (s *TransactionService) settle(ctx context.Context, txID string, kind models.TransactionKind, apply func(tx *gorm.DB, acct *models.Account, entry *models.Transaction) error) (*models.Transaction, error) {
	var owner models.Transaction
	if err := s.DB.WithContext(ctx).Select("id", "user_id").First(&owner, "id = ? AND type = ?", txID, kind).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	var entry models.Transaction
	err := s.ledger.WithAccount(ctx, owner.UserID, func(tx *gorm.DB, acct *models.Account) error {
		if err := forUpdate(tx).First(&entry, "id = ?", txID).Error; err != nil {
			return err
		}
		if !entry.IsPending() {
			return ErrNotPending
		}
		if err := apply(tx, acct, &entry); err != nil {
			return err
		}
		return tx.Model(&entry).Updates(map[string]interface{}{
			"status":       entry.Status,
			"completed_at": entry.CompletedAt,
			"admin_note":   entry.AdminNote,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"tx_id": entry.ID, "type": entry.Kind, "status": entry.Status}).Info("transaction settled")
	return &entry, nil
}

func (s *TransactionService) complete(entry *models.Transaction, status models.TransactionStatus, note string) {
	now := s.ledger.Now()
	entry.Status = status
	entry.CompletedAt = &now
	if note != "" {
		entry.AdminNote = &note
	}
}

// ApproveDeposit credits balance and deposit_amount by the deposit amount.
func (s *TransactionService) ApproveDeposit(ctx context.Context, txID string) (*models.Transaction, error) {
	return s.settle(ctx, txID, models.TransactionDeposit, func(tx *gorm.DB, acct *models.Account, entry *models.Transaction) error {
		if err := s.ledger.Credit(tx, acct, entry.Amount, true); err != nil {
			return err
		}
		s.complete(entry, models.TransactionCompleted, "")
		return nil
	})
}

// RejectDeposit closes a deposit without moving funds.
func (s *TransactionService) RejectDeposit(ctx context.Context, txID, note string) (*models.Transaction, error) {
	return s.settle(ctx, txID, models.TransactionDeposit, func(tx *gorm.DB, acct *models.Account, entry *models.Transaction) error {
		s.complete(entry, models.TransactionRejected, note)
		return nil
	})
}

// ApproveWithdrawal only closes the entry; the debit happened at creation.
func (s *TransactionService) ApproveWithdrawal(ctx context.Context, txID string) (*models.Transaction, error) {
	return s.settle(ctx, txID, models.TransactionWithdraw, func(tx *gorm.DB, acct *models.Account, entry *models.Transaction) error {
		s.complete(entry, models.TransactionCompleted, "")
		return nil
	})
}

// RejectWithdrawal refunds the optimistic debit.
func (s *TransactionService) RejectWithdrawal(ctx context.Context, txID, note string) (*models.Transaction, error) {
	return s.settle(ctx, txID, models.TransactionWithdraw, func(tx *gorm.DB, acct *models.Account, entry *models.Transaction) error {
		if err := s.ledger.Credit(tx, acct, entry.Amount, false); err != nil {
			return err
		}
		s.complete(entry, models.TransactionRejected, note)
		return nil
	})
}
