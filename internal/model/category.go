package model

// CategoryRule is one row of the user-maintained lookup sheet, keyed by the
// raw payee exactly as the feed reports it. Empty fields mean "no override".
type CategoryRule struct {
	Category string // category to assign when the transaction has none
	Name     string // canonical display name to rewrite the payee to
}

// SheetRow is one spreadsheet row ready for append. Cells are strings except
// the amount, which becomes a float at this serialization boundary only.
type SheetRow []any
