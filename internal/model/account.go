package model

// Account is one bank account in the feed, with the transactions fetched
// for the lookback window. Balances stay as reported strings; nothing in
// the pipeline does arithmetic on them.
type Account struct {
	ID           string
	Name         string
	Org          string // institution name
	Currency     string
	Balance      string
	Transactions []*Transaction
}
