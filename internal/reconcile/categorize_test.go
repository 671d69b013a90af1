package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markis/budget-importer/internal/model"
)

func TestCategorize_RuleFillsMissingCategory(t *testing.T) {
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "ACME CORP"
	rules := map[string]model.CategoryRule{
		"ACME CORP": {Category: "Groceries", Name: "Acme"},
	}

	Categorize([]*model.Transaction{tx}, rules)

	assert.Equal(t, "Groceries", tx.Category)
	assert.Equal(t, "Acme", tx.Payee)
}

func TestCategorize_NeverOverwritesReceiptCategory(t *testing.T) {
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "ACME CORP"
	tx.Category = "Dining"
	rules := map[string]model.CategoryRule{
		"ACME CORP": {Category: "Groceries"},
	}

	Categorize([]*model.Transaction{tx}, rules)

	assert.Equal(t, "Dining", tx.Category)
}

func TestCategorize_NameRewriteIsUnconditional(t *testing.T) {
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "ACME CORP"
	tx.Category = "Dining"
	rules := map[string]model.CategoryRule{
		"ACME CORP": {Name: "Acme"},
	}

	Categorize([]*model.Transaction{tx}, rules)

	assert.Equal(t, "Acme", tx.Payee)
	assert.Equal(t, "Dining", tx.Category)
}

func TestCategorize_LookupKeyedByRawPayee(t *testing.T) {
	// A rule keyed by the display name of another rule must not fire after
	// the rewrite.
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "ACME CORP"
	rules := map[string]model.CategoryRule{
		"ACME CORP": {Name: "Acme"},
		"Acme":      {Category: "Wrong"},
	}

	Categorize([]*model.Transaction{tx}, rules)

	assert.Equal(t, "Acme", tx.Payee)
	assert.Empty(t, tx.Category)
}

func TestCategorize_ExactCaseSensitiveMatch(t *testing.T) {
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "acme corp"
	rules := map[string]model.CategoryRule{
		"ACME CORP": {Category: "Groceries", Name: "Acme"},
	}

	Categorize([]*model.Transaction{tx}, rules)

	assert.Equal(t, "acme corp", tx.Payee)
	assert.Empty(t, tx.Category)
}

func TestCategorize_NoRuleLeavesTransactionUntouched(t *testing.T) {
	tx := txn("t1", "-10.00", date(2024, 3, 10))
	tx.Payee = "UNKNOWN"

	Categorize([]*model.Transaction{tx}, map[string]model.CategoryRule{})

	assert.Equal(t, "UNKNOWN", tx.Payee)
	assert.Empty(t, tx.Category)
}
