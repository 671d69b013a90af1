package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a normalized scanned-document record used to corroborate a
// bank transaction. Immutable after construction.
type Receipt struct {
	ID       int64
	Date     time.Time // calendar date, no time-of-day
	Total    decimal.NullDecimal
	Title    string
	Category string // empty = no category tag on the document
	URL      string // permalink into the document store
}
