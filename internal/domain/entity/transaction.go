package entity

import (
	"encoding/json"
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusIncomplete TransactionStatus = "incomplete"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

// Transaction is the client-side view of one purchase transaction as
// reported by the payment API. It is superseded on every status query and
// discarded once terminal.
type Transaction struct {
	ProductID  string
	Status     TransactionStatus
	Receipt    string
	PricePoint float64
	ErrorCode  string
	Raw        json.RawMessage
	ObservedAt time.Time
}

// NewTransaction creates a transaction record for a product at a given status
func NewTransaction(productID string, status TransactionStatus) *Transaction {
	return &Transaction{
		ProductID:  productID,
		Status:     status,
		ObservedAt: time.Now(),
	}
}

// IsTerminal returns true when no further polling should occur
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// IsKnown returns true for statuses that belong to the wire contract
func (s TransactionStatus) IsKnown() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusIncomplete,
		TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

// IsCompleted returns true if the transaction settled successfully
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// IsFailed returns true if the transaction was declined
func (t *Transaction) IsFailed() bool {
	return t.Status == TransactionStatusFailed
}

// HasReceipt returns true when the transaction carries a proof of purchase
func (t *Transaction) HasReceipt() bool {
	return t.Receipt != ""
}
