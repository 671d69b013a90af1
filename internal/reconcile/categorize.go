package reconcile

import (
	"github.com/markis/budget-importer/internal/model"
)

// Categorize applies the lookup-sheet rules to each transaction in place.
//
// A rule's category is a fallback only: it never replaces a category that a
// receipt match already set. A rule's display name always rewrites the payee.
// The rule lookup happens before the rewrite, so rules are keyed by the raw
// payee as fetched, never by a rewritten one.
func Categorize(txns []*model.Transaction, rules map[string]model.CategoryRule) {
	for _, txn := range txns {
		rule, ok := rules[txn.Payee]
		if !ok {
			continue
		}
		if txn.Category == "" && rule.Category != "" {
			txn.Category = rule.Category
		}
		if rule.Name != "" {
			txn.Payee = rule.Name
		}
	}
}
