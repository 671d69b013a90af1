// Package reconcile implements the receipt-matching and categorization
// pipeline: pure transformations over transactions fetched from the bank
// feed, with no I/O of its own.
package reconcile

import (
	"sort"
	"time"

	"github.com/markis/budget-importer/internal/model"
)

// AttachReceipts associates each transaction with at most one receipt.
//
// Receipts are bucketed by exact total; a transaction's candidates are the
// receipts whose total equals its amount, across all accounts. The winner is
// the candidate with the smallest calendar-day distance from the transaction
// date; equal distances resolve to the order receipts were supplied. A chosen
// receipt also supplies the transaction's category, replacing any prior value
// (possibly with the empty string). Transactions with no candidates end with
// both fields cleared.
//
// The flattened transaction list is returned sorted by TransactedAt
// descending, which is the order the sheet writer expects.
func AttachReceipts(accounts []model.Account, receipts []*model.Receipt) []*model.Transaction {
	// String trims trailing zeros, so equal totals share a bucket key
	// regardless of how the source formatted them.
	buckets := make(map[string][]*model.Receipt)
	for _, r := range receipts {
		if !r.Total.Valid {
			continue
		}
		key := r.Total.Decimal.String()
		buckets[key] = append(buckets[key], r)
	}

	var txns []*model.Transaction
	for _, account := range accounts {
		for _, txn := range account.Transactions {
			receipt := closestReceipt(buckets[txn.Amount.String()], txn.TransactedAt)
			txn.Receipt = receipt
			if receipt != nil {
				txn.Category = receipt.Category
			} else {
				txn.Category = ""
			}
			txns = append(txns, txn)
		}
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].TransactedAt.After(txns[j].TransactedAt)
	})
	return txns
}

// closestReceipt picks the candidate with the smallest absolute distance
// between its date and the transaction's calendar date. First supplied wins
// a tie.
func closestReceipt(candidates []*model.Receipt, transactedAt time.Time) *model.Receipt {
	var best *model.Receipt
	var bestDist int
	txDate := truncateToDate(transactedAt)

	for _, r := range candidates {
		dist := dayDistance(txDate, truncateToDate(r.Date))
		if best == nil || dist < bestDist {
			best = r
			bestDist = dist
		}
	}
	return best
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayDistance(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
