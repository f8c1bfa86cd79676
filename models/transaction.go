package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionDeposit  TransactionKind = "deposit"
	TransactionWithdraw TransactionKind = "withdraw"
	TransactionOrder    TransactionKind = "order"
	TransactionMining   TransactionKind = "mining"
	TransactionSpin     TransactionKind = "spin"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRejected  TransactionStatus = "rejected"
)

// Transaction is an append-only ledger entry. Only deposit and withdraw
// entries ever leave their initial status.
type Transaction struct {
	ID            string            `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string            `gorm:"type:uuid;index;not null" json:"user_id"`
	Kind          TransactionKind   `gorm:"column:type;type:varchar(16);not null;index" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:numeric(20,4);not null" json:"amount"`
	Status        TransactionStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	WalletAddress *string           `json:"wallet_address,omitempty"`
	AdminNote     *string           `gorm:"type:text" json:"admin_note,omitempty"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

func (t *Transaction) IsPending() bool {
	return t.Status == TransactionPending
}
