package sheets

import (
	"github.com/markis/budget-importer/internal/model"
)

// Lookup-sheet column layout: payee key, category override, display name.
const (
	colPayee    = 0
	colCategory = 1
	colName     = 2
)

// ParseRuleRows converts raw lookup-sheet rows into payee-keyed rules.
// Missing cells are treated as unset; rows without a payee are skipped.
// Later rows win duplicate payees, matching the sheet's top-down reading.
func ParseRuleRows(rows [][]any) map[string]model.CategoryRule {
	rules := make(map[string]model.CategoryRule)
	for _, row := range rows {
		payee := cellString(row, colPayee)
		if payee == "" {
			continue
		}
		rules[payee] = model.CategoryRule{
			Category: cellString(row, colCategory),
			Name:     cellString(row, colName),
		}
	}
	return rules
}

// ParseIDRows extracts the first-column transaction ids from sheet rows.
func ParseIDRows(rows [][]any) map[string]bool {
	ids := make(map[string]bool)
	for _, row := range rows {
		if id := cellString(row, 0); id != "" {
			ids[id] = true
		}
	}
	return ids
}

func cellString(row []any, col int) string {
	if col >= len(row) {
		return ""
	}
	s, _ := row[col].(string)
	return s
}
