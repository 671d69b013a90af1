package reconcile

import (
	"github.com/markis/budget-importer/internal/model"
)

// cellDateFormat renders transaction dates without leading zeros, matching
// the sheet's existing display convention.
const cellDateFormat = "1/2/2006"

// NewRows converts transactions into sheet rows, skipping any whose ID is
// already recorded. Order is preserved, so rows inherit the matcher's
// most-recent-first ordering.
func NewRows(existingIDs map[string]bool, txns []*model.Transaction) []model.SheetRow {
	var rows []model.SheetRow
	for _, txn := range txns {
		if existingIDs[txn.ID] {
			continue
		}
		rows = append(rows, convertToRow(txn))
	}
	return rows
}

// convertToRow serializes one transaction. The amount becomes a float here
// and nowhere else; all comparisons upstream use exact decimals.
func convertToRow(txn *model.Transaction) model.SheetRow {
	amount, _ := txn.Amount.Float64()

	receiptRef := ""
	if txn.Receipt != nil {
		receiptRef = txn.Receipt.URL
	}

	return model.SheetRow{
		txn.ID,
		txn.Payee,
		amount,
		txn.TransactedAt.UTC().Format(cellDateFormat),
		txn.Category,
		receiptRef,
	}
}
