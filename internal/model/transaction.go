package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a bank-ledger entry from the feed.
// Category and Receipt start unset and are bound by the reconcile pipeline.
type Transaction struct {
	ID           string
	Payee        string // may be rewritten to a canonical display name
	Description  string
	Memo         string
	Amount       decimal.Decimal // negative = debit, positive = credit/refund
	PostedAt     time.Time       // UTC
	TransactedAt time.Time       // UTC
	Category     string          // empty = uncategorized
	Receipt      *Receipt        // at most one match, not owned
}
