// Package paperless fetches scanned receipt documents from a Paperless
// instance and normalizes them into model.Receipts.
package paperless

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/markis/budget-importer/internal/model"
)

// Custom-field ids are assigned by the Paperless instance; these defaults
// match the conventional setup and can be overridden in config.
const (
	DefaultTotalFieldID    = 1
	DefaultCategoryFieldID = 3
)

// DefaultDocumentType is the document-type name filter for fetches.
const DefaultDocumentType = "receipt"

// currencyPrefix is stripped from the total custom field before parsing.
const currencyPrefix = "USD"

const (
	clientTimeout  = 30 * time.Second
	createdDateFmt = "2006-01-02"
)

// Client talks to the Paperless documents API.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	token           string
	totalFieldID    int
	categoryFieldID int
	log             zerolog.Logger
}

// Option adjusts a Client.
type Option func(*Client)

// WithFieldIDs overrides the custom-field ids holding the receipt total and
// category. Non-positive ids keep the defaults.
func WithFieldIDs(totalID, categoryID int) Option {
	return func(c *Client) {
		if totalID > 0 {
			c.totalFieldID = totalID
		}
		if categoryID > 0 {
			c.categoryFieldID = categoryID
		}
	}
}

// NewClient creates a Paperless client rooted at baseURL.
func NewClient(baseURL, token string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: clientTimeout},
		baseURL:         strings.TrimRight(baseURL, "/"),
		token:           token,
		totalFieldID:    DefaultTotalFieldID,
		categoryFieldID: DefaultCategoryFieldID,
		log:             log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchReceipts returns all documents of the given type (DefaultDocumentType
// if empty), following pagination until exhausted.
func (c *Client) FetchReceipts(ctx context.Context, documentType string) ([]*model.Receipt, error) {
	if documentType == "" {
		documentType = DefaultDocumentType
	}

	query := url.Values{}
	query.Set("document_type__name__iexact", documentType)
	next := c.baseURL + "/api/documents/?" + query.Encode()

	var receipts []*model.Receipt
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}

		for _, raw := range page.Results {
			receipt, err := c.parseDocument(raw)
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", raw.ID, err)
			}
			receipts = append(receipts, receipt)
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	c.log.Info().Int("receipts", len(receipts)).Msg("fetched receipts")
	return receipts, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*documentsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building documents request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching documents: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paperless returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading documents response: %w", err)
	}

	var page documentsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decoding documents response: %w", err)
	}
	return &page, nil
}

// documentsPage is the wire shape of one page of /api/documents/.
type documentsPage struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []documentJSON `json:"results"`
}

type documentJSON struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	CreatedDate  string            `json:"created_date"`
	CustomFields []customFieldJSON `json:"custom_fields"`
}

type customFieldJSON struct {
	Field int    `json:"field"`
	Value string `json:"value"`
}

// parseDocument normalizes one document. The total custom field is negated:
// the source records receipts as positive spend, the domain treats outflow
// as negative.
func (c *Client) parseDocument(raw documentJSON) (*model.Receipt, error) {
	if raw.CreatedDate == "" {
		return nil, fmt.Errorf("missing created_date")
	}
	created, err := time.Parse(createdDateFmt, raw.CreatedDate)
	if err != nil {
		return nil, fmt.Errorf("parsing created_date %q: %w", raw.CreatedDate, err)
	}

	var total decimal.NullDecimal
	if value, ok := customField(raw.CustomFields, c.totalFieldID); ok {
		parsed, err := decimal.NewFromString(strings.TrimPrefix(value, currencyPrefix))
		if err != nil {
			return nil, fmt.Errorf("parsing total %q: %w", value, err)
		}
		total = decimal.NullDecimal{Decimal: parsed.Neg(), Valid: true}
	}

	category, _ := customField(raw.CustomFields, c.categoryFieldID)

	return &model.Receipt{
		ID:       raw.ID,
		Date:     created,
		Total:    total,
		Title:    raw.Title,
		Category: category,
		URL:      fmt.Sprintf("%s/documents/%d/", c.baseURL, raw.ID),
	}, nil
}

func customField(fields []customFieldJSON, id int) (string, bool) {
	for _, f := range fields {
		if f.Field == id {
			return f.Value, true
		}
	}
	return "", false
}
