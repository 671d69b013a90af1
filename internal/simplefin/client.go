// Package simplefin fetches accounts and transactions from a SimpleFIN
// bridge and normalizes them into model types.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/markis/budget-importer/internal/model"
)

const clientTimeout = 30 * time.Second

// Client talks to the SimpleFIN /accounts endpoint.
type Client struct {
	httpClient *http.Client
	accessURL  string
	username   string
	password   string
	log        zerolog.Logger
}

// NewClient creates a SimpleFIN client for the given access URL.
func NewClient(accessURL, username, password string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: clientTimeout},
		accessURL:  accessURL,
		username:   username,
		password:   password,
		log:        log,
	}
}

// FetchAccounts returns all accounts with their transactions posted since
// startDate. Pending transactions are included.
func (c *Client) FetchAccounts(ctx context.Context, startDate time.Time) ([]model.Account, error) {
	params := url.Values{}
	params.Set("pending", "1")
	params.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.accessURL+"/accounts?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building accounts request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("simplefin returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading accounts response: %w", err)
	}

	var wire accountsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding accounts response: %w", err)
	}

	for _, msg := range wire.Errors {
		c.log.Warn().Str("source", "simplefin").Msg(msg)
	}
	for _, msg := range wire.XAPIMessage {
		c.log.Warn().Str("source", "simplefin").Msg(msg)
	}

	accounts := make([]model.Account, 0, len(wire.Accounts))
	for _, raw := range wire.Accounts {
		account, err := raw.toModel()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", raw.ID, err)
		}
		accounts = append(accounts, account)
	}

	c.log.Info().Int("accounts", len(accounts)).Msg("fetched accounts")
	return accounts, nil
}

// accountsResponse is the wire shape of the /accounts endpoint.
type accountsResponse struct {
	Accounts    []accountJSON `json:"accounts"`
	Errors      []string      `json:"errors"`
	XAPIMessage []string      `json:"x-api-message"`
}

type accountJSON struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Currency     string            `json:"currency"`
	Balance      string            `json:"balance"`
	BalanceDate  int64             `json:"balance-date"`
	Org          orgJSON           `json:"org"`
	Transactions []transactionJSON `json:"transactions"`
}

type orgJSON struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type transactionJSON struct {
	ID           string `json:"id"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Memo         string `json:"memo"`
	Payee        string `json:"payee"`
	Posted       int64  `json:"posted"`
	TransactedAt int64  `json:"transacted_at"`
}

func (a accountJSON) toModel() (model.Account, error) {
	txns := make([]*model.Transaction, 0, len(a.Transactions))
	for _, raw := range a.Transactions {
		txn, err := raw.toModel()
		if err != nil {
			return model.Account{}, err
		}
		txns = append(txns, txn)
	}

	return model.Account{
		ID:           a.ID,
		Name:         a.Name,
		Org:          a.Org.Name,
		Currency:     a.Currency,
		Balance:      a.Balance,
		Transactions: txns,
	}, nil
}

func (t transactionJSON) toModel() (*model.Transaction, error) {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: parsing amount %q: %w", t.ID, t.Amount, err)
	}

	return &model.Transaction{
		ID:           t.ID,
		Payee:        t.Payee,
		Description:  t.Description,
		Memo:         t.Memo,
		Amount:       amount,
		PostedAt:     time.Unix(t.Posted, 0).UTC(),
		TransactedAt: time.Unix(t.TransactedAt, 0).UTC(),
	}, nil
}
